package match

import (
	"fmt"
	"time"
)

// Match is a persisted upcoming fixture, keyed by the provider-scoped
// external ID so re-syncing the same fixture updates in place.
type Match struct {
	ExternalID string
	Provider   string

	HomeTeam     string
	AwayTeam     string
	HomeTeamLogo string
	AwayTeamLogo string

	LeagueKey  string
	LeagueID   int64
	LeagueName string
	LeagueLogo string

	// Date is YYYY-MM-DD; Time is HH:MM and empty while TBD.
	Date string
	Time string

	// RoundID is the provider round the match belongs to, empty when the
	// sync path could not resolve one (day-based loads).
	RoundID     string
	RoundNumber int

	Status     string
	Importance *Importance
	Source     string

	CreatedAt    time.Time
	LastSyncedAt time.Time
}

// Importance is an advisory tag for high-profile pairings. It never gates
// whether a match is stored.
type Importance struct {
	Label    string
	Priority string
}

func (m Match) Validate() error {
	if m.ExternalID == "" {
		return fmt.Errorf("match external id is required")
	}
	if m.Provider == "" {
		return fmt.Errorf("match provider is required")
	}
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return fmt.Errorf("match needs both team names")
	}
	if m.Date == "" {
		return fmt.Errorf("match date is required")
	}

	return nil
}
