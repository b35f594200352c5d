package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/refdata"
)

// stubGateway satisfies ProviderGateway from optional function fields so each
// test only wires the calls it cares about.
type stubGateway struct {
	currentSeasonFn   func(leagueID int64) (fixture.Season, bool, error)
	seasonsFn         func(leagueID int64) ([]fixture.Season, error)
	stagesFn          func(seasonID int64) ([]fixture.Stage, error)
	roundsFn          func(stageID int64) ([]fixture.Round, error)
	byRoundsFn        func(roundIDs []int64) ([]json.RawMessage, error)
	byDateFn          func(date string) ([]json.RawMessage, error)
	betweenFn         func(from, to string, leagueID int64) ([]json.RawMessage, error)
	currentSeasonHits int
	seasonsHits       int
	byDateHits        int
	betweenHits       int
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CurrentSeason(_ context.Context, leagueID int64) (fixture.Season, bool, error) {
	g.currentSeasonHits++
	if g.currentSeasonFn == nil {
		return fixture.Season{}, false, nil
	}
	return g.currentSeasonFn(leagueID)
}

func (g *stubGateway) SeasonsByLeague(_ context.Context, leagueID int64) ([]fixture.Season, error) {
	g.seasonsHits++
	if g.seasonsFn == nil {
		return nil, nil
	}
	return g.seasonsFn(leagueID)
}

func (g *stubGateway) SeasonStages(_ context.Context, seasonID int64) ([]fixture.Stage, error) {
	if g.stagesFn == nil {
		return nil, nil
	}
	return g.stagesFn(seasonID)
}

func (g *stubGateway) StageRounds(_ context.Context, stageID int64) ([]fixture.Round, error) {
	if g.roundsFn == nil {
		return nil, nil
	}
	return g.roundsFn(stageID)
}

func (g *stubGateway) FixturesByRounds(_ context.Context, roundIDs []int64) ([]json.RawMessage, error) {
	if g.byRoundsFn == nil {
		return nil, nil
	}
	return g.byRoundsFn(roundIDs)
}

func (g *stubGateway) FixturesByDate(_ context.Context, date string) ([]json.RawMessage, error) {
	g.byDateHits++
	if g.byDateFn == nil {
		return nil, nil
	}
	return g.byDateFn(date)
}

func (g *stubGateway) FixturesBetween(_ context.Context, from, to string, leagueID int64) ([]json.RawMessage, error) {
	g.betweenHits++
	if g.betweenFn == nil {
		return nil, nil
	}
	return g.betweenFn(from, to, leagueID)
}

// stubPayload is the minimal fixture shape stubMapper understands.
type stubPayload struct {
	ID       string `json:"id"`
	LeagueID int64  `json:"league_id"`
	RoundID  string `json:"round_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Home     string `json:"home"`
	Away     string `json:"away"`
}

func rawStub(p stubPayload) json.RawMessage {
	raw, err := sonic.Marshal(p)
	if err != nil {
		panic(err)
	}
	return raw
}

type stubMapper struct{}

func (stubMapper) Provider() string { return "stub" }

func (stubMapper) MapFixture(raw json.RawMessage) (fixture.Standard, error) {
	var p stubPayload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return fixture.Standard{}, fmt.Errorf("%w: %v", ErrMapping, err)
	}
	if p.ID == "" || p.Date == "" {
		return fixture.Standard{}, fmt.Errorf("%w: incomplete stub payload", ErrMapping)
	}
	return fixture.Standard{
		FixtureID:  "stub_" + p.ID,
		ExternalID: p.ID,
		Provider:   "stub",
		League:     fixture.League{ID: p.LeagueID, Name: "Stub League"},
		Date:       p.Date,
		Time:       p.Time,
		Participants: []fixture.Participant{
			{ID: p.ID + "_h", Name: p.Home, Role: fixture.RoleHome},
			{ID: p.ID + "_a", Name: p.Away, Role: fixture.RoleAway},
		},
		Status: fixture.Status{Code: fixture.StatusNotStarted},
		Meta:   fixture.Meta{RoundID: p.RoundID},
	}, nil
}

func (m stubMapper) MapFixtures(raws []json.RawMessage) fixture.Batch {
	var batch fixture.Batch
	for i, raw := range raws {
		f, err := m.MapFixture(raw)
		if err != nil {
			batch.Failures = append(batch.Failures, fixture.MapFailure{Index: i, Err: err})
			continue
		}
		batch.Fixtures = append(batch.Fixtures, f)
	}
	return batch
}

func testLeagueTable(t interface{ Fatalf(string, ...any) }) *league.Table {
	table, err := league.NewTable([]league.Config{
		{
			Key:             "serie-a",
			Name:            "Serie A",
			ProviderID:      384,
			Tier:            league.TierHigh,
			RoundsToLoad:    3,
			MatchesPerRound: 2,
			RefreshInterval: 6 * time.Hour,
		},
		{
			Key:             "serie-b",
			Name:            "Serie B",
			ProviderID:      387,
			Tier:            league.TierLow,
			RoundsToLoad:    2,
			MatchesPerRound: 2,
			RefreshInterval: 24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("build league table: %v", err)
	}
	return table
}

const testRefdataDoc = `{
  "version": "test",
  "lastUpdated": "2026-09-01T00:00:00Z",
  "leagues": {
    "serie-a": {
      "id": 384,
      "name": "Serie A",
      "tier": "TIER_1",
      "roundsToLoad": 3,
      "matchesPerRound": 2,
      "fallbackSeasonId": 25533,
      "rounds": {"339270": 2, "339271": 3, "339272": 4}
    },
    "serie-b": {
      "id": 387,
      "name": "Serie B",
      "tier": "TIER_3",
      "roundsToLoad": 2,
      "matchesPerRound": 2,
      "fallbackSeasonId": 26164,
      "rounds": {}
    }
  }
}`

func testRefdata(t interface{ Fatalf(string, ...any) }) *refdata.Table {
	table, err := refdata.Load([]byte(testRefdataDoc))
	if err != nil {
		t.Fatalf("load reference data: %v", err)
	}
	return table
}

// testRefdataWithoutFallbacks knows the league IDs but ships no fallback
// seasons, so a provider outage cannot be papered over.
func testRefdataWithoutFallbacks(t interface{ Fatalf(string, ...any) }) *refdata.Table {
	doc := `{
  "version": "test",
  "lastUpdated": "2026-09-01T00:00:00Z",
  "leagues": {
    "serie-a": {"id": 384, "name": "Serie A", "tier": "TIER_1", "roundsToLoad": 3, "matchesPerRound": 2, "rounds": {}}
  }
}`
	table, err := refdata.Load([]byte(doc))
	if err != nil {
		t.Fatalf("load reference data: %v", err)
	}
	return table
}

func nopLogger() *logging.Logger { return logging.NewNop() }

func timePtr(t time.Time) *time.Time { return &t }
