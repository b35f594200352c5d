package staticfix

import (
	"context"
	"testing"

	"github.com/sportsdock/fixture-sync/external/sportmonks"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
)

func TestClient_SeasonHierarchy(t *testing.T) {
	t.Parallel()

	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	season, ok, err := client.CurrentSeason(ctx, 384)
	if err != nil || !ok {
		t.Fatalf("CurrentSeason: ok=%v err=%v", ok, err)
	}
	if season.ID != 25533 {
		t.Fatalf("season id = %d", season.ID)
	}

	stages, err := client.SeasonStages(ctx, season.ID)
	if err != nil || len(stages) != 1 {
		t.Fatalf("SeasonStages: %v %+v", err, stages)
	}

	rounds, err := client.StageRounds(ctx, stages[0].ID)
	if err != nil || len(rounds) != 3 {
		t.Fatalf("StageRounds: %v %+v", err, rounds)
	}
	if rounds[0].Number != 2 {
		t.Fatalf("round number parse wrong: %+v", rounds[0])
	}
}

func TestClient_FixtureQueries(t *testing.T) {
	t.Parallel()

	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	byRound, err := client.FixturesByRounds(ctx, []int64{339271})
	if err != nil || len(byRound) != 2 {
		t.Fatalf("FixturesByRounds: %v got %d", err, len(byRound))
	}

	byDate, err := client.FixturesByDate(ctx, "2026-09-06")
	if err != nil || len(byDate) != 2 {
		t.Fatalf("FixturesByDate: %v got %d", err, len(byDate))
	}

	between, err := client.FixturesBetween(ctx, "2026-09-05", "2026-09-14", 384)
	if err != nil || len(between) != 3 {
		t.Fatalf("FixturesBetween: %v got %d", err, len(between))
	}

	// TBD fixture is slotted on its round start date.
	tbd, err := client.FixturesByDate(ctx, "2026-09-12")
	if err != nil || len(tbd) != 1 {
		t.Fatalf("TBD fixture slotting: %v got %d", err, len(tbd))
	}
}

func TestClient_PayloadsMapCleanly(t *testing.T) {
	t.Parallel()

	client, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	raws, err := client.FixturesBetween(context.Background(), "2026-08-01", "2026-10-01", 0)
	if err != nil {
		t.Fatalf("FixturesBetween: %v", err)
	}

	batch := sportmonks.NewAdapter(logging.NewNop()).MapFixtures(raws)
	if len(batch.Failures) != 0 {
		t.Fatalf("embedded dataset should map without failures: %+v", batch.Errors())
	}
	if len(batch.Fixtures) != len(raws) {
		t.Fatalf("want %d mapped fixtures, got %d", len(raws), len(batch.Fixtures))
	}
}
