package match

import "context"

// Filter narrows repository queries. Zero values mean "no constraint".
type Filter struct {
	LeagueKey string
	LeagueID  int64
	Provider  string

	// DateBefore matches Date < value, DateFrom matches Date >= value.
	DateBefore string
	DateFrom   string

	// WithRound constrains on whether a round ID is present.
	WithRound *bool
}

// Repository exposes the match persistence operations the sync pipeline needs.
type Repository interface {
	FindByExternalID(ctx context.Context, provider, externalID string) (Match, bool, error)
	Upsert(ctx context.Context, m Match) error
	ListWhere(ctx context.Context, f Filter) ([]Match, error)
	CountWhere(ctx context.Context, f Filter) (int, error)
	DeleteWhere(ctx context.Context, f Filter) (int, error)
}
