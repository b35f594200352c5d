// Package refdata holds the shipped league reference table: provider league
// IDs, last-known season IDs for degraded operation, and round ID to round
// number mappings. The table is advisory; every lookup has a miss path.
package refdata

import (
	_ "embed"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/sportsdock/fixture-sync/internal/domain/league"
)

//go:embed leagues.json
var embeddedLeagues []byte

type document struct {
	Version     string               `json:"version"`
	LastUpdated time.Time            `json:"lastUpdated"`
	Leagues     map[string]leagueDoc `json:"leagues"`
}

type leagueDoc struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Tier             string         `json:"tier"`
	RoundsToLoad     int            `json:"roundsToLoad"`
	MatchesPerRound  int            `json:"matchesPerRound"`
	FallbackSeasonID int64          `json:"fallbackSeasonId"`
	Rounds           map[string]int `json:"rounds"`
}

// Table is the parsed reference data. A degraded table answers every lookup
// with a miss instead of failing callers.
type Table struct {
	version  string
	updated  time.Time
	leagues  map[string]leagueDoc
	rounds   map[string]map[int64]int
	degraded bool
}

// Load parses a reference document.
func Load(raw []byte) (*Table, error) {
	var doc document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parse reference data")
	}
	if len(doc.Leagues) == 0 {
		return nil, errors.New("reference data has no leagues")
	}

	rounds := make(map[string]map[int64]int, len(doc.Leagues))
	for key, l := range doc.Leagues {
		if len(l.Rounds) == 0 {
			continue
		}
		byID := make(map[int64]int, len(l.Rounds))
		for idStr, number := range l.Rounds {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "league %s: bad round id %q", key, idStr)
			}
			byID[id] = number
		}
		rounds[key] = byID
	}

	return &Table{
		version: doc.Version,
		updated: doc.LastUpdated,
		leagues: doc.Leagues,
		rounds:  rounds,
	}, nil
}

// LoadFile reads an override file from disk, falling back to the embedded
// table (and finally to a degraded empty table) when it cannot be used.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Embedded(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Embedded(), errors.Wrapf(err, "read reference data %s", path)
	}
	t, err := Load(raw)
	if err != nil {
		return Embedded(), err
	}
	return t, nil
}

// Embedded returns the table shipped with the binary.
func Embedded() *Table {
	t, err := Load(embeddedLeagues)
	if err != nil {
		return Degraded()
	}
	return t
}

// Degraded returns an empty table where every lookup misses.
func Degraded() *Table {
	return &Table{
		leagues:  map[string]leagueDoc{},
		rounds:   map[string]map[int64]int{},
		degraded: true,
	}
}

func (t *Table) Degraded() bool { return t.degraded }

func (t *Table) Version() string { return t.version }

// LeagueID returns the provider league ID for a league key.
func (t *Table) LeagueID(key string) (int64, bool) {
	l, ok := t.leagues[key]
	if !ok || l.ID == 0 {
		return 0, false
	}
	return l.ID, true
}

// FallbackSeasonID returns the last-known season for degraded resolution.
func (t *Table) FallbackSeasonID(key string) (int64, bool) {
	l, ok := t.leagues[key]
	if !ok || l.FallbackSeasonID == 0 {
		return 0, false
	}
	return l.FallbackSeasonID, true
}

// RoundNumber maps a provider round ID to its matchday number. Implausible
// shipped values are treated as misses.
func (t *Table) RoundNumber(key string, roundID int64) (int, bool) {
	byID, ok := t.rounds[key]
	if !ok {
		return 0, false
	}
	n, ok := byID[roundID]
	if !ok || n <= 0 || n >= 1000 {
		return 0, false
	}
	return n, true
}

// Keys lists known league keys in stable order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.leagues))
	for k := range t.leagues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LeagueConfigs materializes the shipped sync policy for every league.
func (t *Table) LeagueConfigs() []league.Config {
	configs := make([]league.Config, 0, len(t.leagues))
	for _, key := range t.Keys() {
		l := t.leagues[key]
		configs = append(configs, league.Config{
			Key:             key,
			Name:            l.Name,
			ProviderID:      l.ID,
			Tier:            l.Tier,
			RoundsToLoad:    l.RoundsToLoad,
			MatchesPerRound: l.MatchesPerRound,
		})
	}
	return configs
}
