package usecase

import (
	"context"
	"encoding/json"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
)

// ProviderGateway is the single outbound edge to a fixture provider. Season,
// stage and round lookups come back normalized; fixture payloads stay raw so
// the registered mapper owns normalization.
type ProviderGateway interface {
	Name() string

	// CurrentSeason reports ok=false when the provider does not attach a
	// current-season relation to the league.
	CurrentSeason(ctx context.Context, leagueID int64) (fixture.Season, bool, error)
	SeasonsByLeague(ctx context.Context, leagueID int64) ([]fixture.Season, error)
	SeasonStages(ctx context.Context, seasonID int64) ([]fixture.Stage, error)
	StageRounds(ctx context.Context, stageID int64) ([]fixture.Round, error)

	FixturesByRounds(ctx context.Context, roundIDs []int64) ([]json.RawMessage, error)
	FixturesByDate(ctx context.Context, date string) ([]json.RawMessage, error)
	FixturesBetween(ctx context.Context, from, to string, leagueID int64) ([]json.RawMessage, error)
}

// FixtureMapper normalizes raw provider fixture payloads.
type FixtureMapper interface {
	Provider() string
	MapFixture(raw json.RawMessage) (fixture.Standard, error)
	MapFixtures(raws []json.RawMessage) fixture.Batch
}
