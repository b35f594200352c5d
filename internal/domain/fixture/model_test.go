package fixture

import (
	"testing"
	"time"
)

func validStandard() Standard {
	return Standard{
		FixtureID:  "sportmonks_19135648",
		ExternalID: "19135648",
		Provider:   "sportmonks",
		League:     League{ID: 387, Name: "Serie A"},
		Date:       "2026-09-05",
		Time:       "18:45",
		Participants: []Participant{
			{ID: "625", Name: "Juventus", Role: RoleHome},
			{ID: "37", Name: "AS Roma", Role: RoleAway},
		},
		Status: Status{Code: StatusNotStarted, Description: "Not Started"},
	}
}

func TestStandard_Validate(t *testing.T) {
	t.Parallel()

	if err := validStandard().Validate(); err != nil {
		t.Fatalf("expected valid fixture, got %v", err)
	}

	missingAway := validStandard()
	missingAway.Participants = missingAway.Participants[:1]
	if err := missingAway.Validate(); err == nil {
		t.Fatal("expected error for single participant")
	}

	twoHomes := validStandard()
	twoHomes.Participants[1].Role = RoleHome
	if err := twoHomes.Validate(); err == nil {
		t.Fatal("expected error when away side is missing")
	}

	noStatus := validStandard()
	noStatus.Status.Code = ""
	if err := noStatus.Validate(); err == nil {
		t.Fatal("expected error for empty status code")
	}
}

func TestStandard_TimeTBD(t *testing.T) {
	t.Parallel()

	f := validStandard()
	if f.TimeTBD() {
		t.Fatal("fixture with confirmed time reported TBD")
	}
	f.Time = ""
	if !f.TimeTBD() {
		t.Fatal("fixture without time should be TBD")
	}
}

func TestRound_IsUpcoming(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	past := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	if (Round{EndsAt: &past}).IsUpcoming(now) {
		t.Fatal("finished round reported upcoming")
	}
	if !(Round{EndsAt: &today}).IsUpcoming(now) {
		t.Fatal("round ending today should stay upcoming")
	}
	if !(Round{StartsAt: &future}).IsUpcoming(now) {
		t.Fatal("future round not upcoming")
	}
	if !(Round{}).IsUpcoming(now) {
		t.Fatal("dateless round should be treated as upcoming")
	}
}

func TestRound_IsUpcomingKeepsRoundStartedWithinGrace(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	start := now.Add(-30 * time.Hour)
	end := now.Add(-14 * time.Hour)
	if !(Round{StartsAt: &start, EndsAt: &end}).IsUpcoming(now) {
		t.Fatal("round started within the grace window should stay upcoming")
	}

	staleStart := now.Add(-72 * time.Hour)
	staleEnd := now.Add(-20 * time.Hour)
	if (Round{StartsAt: &staleStart, EndsAt: &staleEnd}).IsUpcoming(now) {
		t.Fatal("round started before the grace window reported upcoming")
	}
}

func TestSortRounds_Deterministic(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	rounds := []Round{
		{ID: 30, Number: 2, StartsAt: &d2},
		{ID: 10, Number: 1, StartsAt: &d1},
		{ID: 20, Number: 1, StartsAt: &d2},
		{ID: 5, Number: 1},
	}

	SortRounds(rounds)

	want := []int64{10, 20, 5, 30}
	for i, id := range want {
		if rounds[i].ID != id {
			t.Fatalf("position %d: want round %d, got %d", i, id, rounds[i].ID)
		}
	}
}

func TestMostRecentSeason(t *testing.T) {
	t.Parallel()

	if _, ok := MostRecentSeason(nil); ok {
		t.Fatal("empty slice should report not found")
	}

	seasons := []Season{{ID: 25533}, {ID: 23746, IsCurrent: true}, {ID: 26000}}
	got, ok := MostRecentSeason(seasons)
	if !ok || got.ID != 23746 {
		t.Fatalf("current flag should win, got %+v ok=%v", got, ok)
	}

	seasons = []Season{{ID: 25533}, {ID: 26000}, {ID: 23746}}
	got, _ = MostRecentSeason(seasons)
	if got.ID != 26000 {
		t.Fatalf("highest id should win without current flag, got %d", got.ID)
	}
}
