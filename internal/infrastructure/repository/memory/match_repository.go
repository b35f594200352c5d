package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sportsdock/fixture-sync/internal/domain/match"
)

// MatchRepository is the in-memory match store used for offline mode and
// tests. Keys are provider-scoped external IDs.
type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[string]match.Match)}
}

func matchKey(provider, externalID string) string {
	return provider + "_" + externalID
}

func (r *MatchRepository) FindByExternalID(_ context.Context, provider, externalID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchKey(provider, externalID)]
	return m, ok, nil
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	if err := m.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey(m.Provider, m.ExternalID)
	if existing, ok := r.matches[key]; ok {
		m.CreatedAt = existing.CreatedAt
		// A plain sync carries no round or importance data; keep what a
		// backfill already wrote instead of blanking it.
		if m.RoundID == "" {
			m.RoundID = existing.RoundID
		}
		if m.RoundNumber == 0 {
			m.RoundNumber = existing.RoundNumber
		}
		if m.Importance == nil {
			m.Importance = existing.Importance
		}
	} else if m.CreatedAt.IsZero() {
		m.CreatedAt = m.LastSyncedAt
	}
	r.matches[key] = m
	return nil
}

func (r *MatchRepository) ListWhere(_ context.Context, f match.Filter) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.matches))
	for _, m := range r.matches {
		if matchesFilter(m, f) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ExternalID < out[j].ExternalID
	})
	return out, nil
}

func (r *MatchRepository) CountWhere(_ context.Context, f match.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.matches {
		if matchesFilter(m, f) {
			count++
		}
	}
	return count, nil
}

func (r *MatchRepository) DeleteWhere(_ context.Context, f match.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, m := range r.matches {
		if matchesFilter(m, f) {
			delete(r.matches, key)
			removed++
		}
	}
	return removed, nil
}

func matchesFilter(m match.Match, f match.Filter) bool {
	if f.LeagueKey != "" && m.LeagueKey != f.LeagueKey {
		return false
	}
	if f.LeagueID != 0 && m.LeagueID != f.LeagueID {
		return false
	}
	if f.Provider != "" && m.Provider != f.Provider {
		return false
	}
	if f.DateBefore != "" && m.Date >= f.DateBefore {
		return false
	}
	if f.DateFrom != "" && m.Date < f.DateFrom {
		return false
	}
	if f.WithRound != nil {
		hasRound := m.RoundID != ""
		if hasRound != *f.WithRound {
			return false
		}
	}
	return true
}
