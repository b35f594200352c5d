package fixture

import (
	"sort"
	"time"
)

// Season is one competition edition as reported by the provider.
type Season struct {
	ID        int64
	LeagueID  int64
	Name      string
	IsCurrent bool
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// Stage is one phase of a season, such as the regular season or playoffs.
type Stage struct {
	ID       int64
	SeasonID int64
	Name     string
	TypeID   int64
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Round is one matchday inside a stage.
type Round struct {
	ID       int64
	StageID  int64
	SeasonID int64
	Number   int
	Name     string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// roundInProgressGrace keeps a round visible for two days after it starts,
// so a matchday that kicked off yesterday is still served while postponed
// legs or late results settle.
const roundInProgressGrace = 2 * 24 * time.Hour

// IsUpcoming reports whether the round still has play left relative to now.
// A round whose dates both fall after now minus the grace window counts,
// which keeps a just-started matchday in the upcoming set. Rounds without
// dates are treated as upcoming so a sparse provider payload never hides a
// matchday.
func (r Round) IsUpcoming(now time.Time) bool {
	cutoff := now.Add(-roundInProgressGrace)
	switch {
	case r.StartsAt != nil && r.EndsAt != nil:
		return r.StartsAt.After(cutoff) && r.EndsAt.After(cutoff)
	case r.EndsAt != nil:
		return r.EndsAt.After(cutoff)
	case r.StartsAt != nil:
		return r.StartsAt.After(cutoff)
	}
	return true
}

// SortRounds orders rounds by number, then start date, then ID, so taking a
// prefix always yields the same window for the same input.
func SortRounds(rounds []Round) {
	sort.SliceStable(rounds, func(i, j int) bool {
		if rounds[i].Number != rounds[j].Number {
			return rounds[i].Number < rounds[j].Number
		}
		si, sj := rounds[i].StartsAt, rounds[j].StartsAt
		switch {
		case si != nil && sj != nil && !si.Equal(*sj):
			return si.Before(*sj)
		case si != nil && sj == nil:
			return true
		case si == nil && sj != nil:
			return false
		}
		return rounds[i].ID < rounds[j].ID
	})
}

// MostRecentSeason picks the current season when flagged, otherwise the one
// with the highest ID. ok is false for an empty slice.
func MostRecentSeason(seasons []Season) (Season, bool) {
	if len(seasons) == 0 {
		return Season{}, false
	}
	best := seasons[0]
	for _, s := range seasons[1:] {
		if s.IsCurrent && !best.IsCurrent {
			best = s
			continue
		}
		if s.IsCurrent == best.IsCurrent && s.ID > best.ID {
			best = s
		}
	}
	return best, true
}
