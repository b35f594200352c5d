package league

import (
	"testing"
	"time"
)

func sampleConfig() Config {
	return Config{
		Key:             "serie-a",
		Name:            "Serie A",
		ProviderID:      384,
		Tier:            TierHigh,
		RoundsToLoad:    3,
		MatchesPerRound: 10,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := sampleConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := sampleConfig()
	bad.Tier = "TIER_9"
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unknown tier")
	}

	bad = sampleConfig()
	bad.ProviderID = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for missing provider id")
	}
}

func TestConfig_ExpectedFutureMatches(t *testing.T) {
	t.Parallel()

	if got := sampleConfig().ExpectedFutureMatches(); got != 30 {
		t.Fatalf("want 30 expected matches, got %d", got)
	}
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	serieB := sampleConfig()
	serieB.Key = "serie-b"
	serieB.ProviderID = 387
	serieB.Tier = TierMedium

	table, err := NewTable([]Config{sampleConfig(), serieB})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	got, ok := table.Get("serie-b")
	if !ok {
		t.Fatal("serie-b not found")
	}
	if got.RefreshInterval != 12*time.Hour {
		t.Fatalf("tier default interval not applied, got %s", got.RefreshInterval)
	}

	if _, ok := table.ByProviderID(384); !ok {
		t.Fatal("lookup by provider id failed")
	}

	if _, err := NewTable([]Config{sampleConfig(), sampleConfig()}); err == nil {
		t.Fatal("expected duplicate key error")
	}
}
