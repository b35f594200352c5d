package refdata

import (
	"testing"

	"github.com/sportsdock/fixture-sync/internal/domain/league"
)

func TestEmbedded(t *testing.T) {
	t.Parallel()

	table := Embedded()
	if table.Degraded() {
		t.Fatal("embedded table should not be degraded")
	}

	id, ok := table.LeagueID("serie-a")
	if !ok || id != 384 {
		t.Fatalf("serie-a league id: got %d ok=%v", id, ok)
	}

	season, ok := table.FallbackSeasonID("serie-b")
	if !ok || season != 26164 {
		t.Fatalf("serie-b fallback season: got %d ok=%v", season, ok)
	}

	if _, ok := table.LeagueID("unknown-league"); ok {
		t.Fatal("unknown league should miss")
	}
}

func TestTable_RoundNumber(t *testing.T) {
	t.Parallel()

	table := Embedded()

	n, ok := table.RoundNumber("serie-b", 341122)
	if !ok || n != 3 {
		t.Fatalf("serie-b round 341122: got %d ok=%v", n, ok)
	}

	if _, ok := table.RoundNumber("serie-b", 999999); ok {
		t.Fatal("unknown round id should miss")
	}
	if _, ok := table.RoundNumber("la-liga", 341122); ok {
		t.Fatal("league without round table should miss")
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := Load([]byte("{broken")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Load([]byte(`{"leagues":{}}`)); err == nil {
		t.Fatal("expected error for empty league set")
	}
	if _, err := Load([]byte(`{"leagues":{"x":{"id":1,"rounds":{"abc":1}}}}`)); err == nil {
		t.Fatal("expected error for non-numeric round id")
	}
}

func TestDegraded(t *testing.T) {
	t.Parallel()

	table := Degraded()
	if !table.Degraded() {
		t.Fatal("degraded flag not set")
	}
	if _, ok := table.LeagueID("serie-a"); ok {
		t.Fatal("degraded table should miss every lookup")
	}
	if _, ok := table.RoundNumber("serie-a", 339270); ok {
		t.Fatal("degraded table should miss round lookups")
	}
}

func TestLeagueConfigs(t *testing.T) {
	t.Parallel()

	configs := Embedded().LeagueConfigs()
	if len(configs) == 0 {
		t.Fatal("expected shipped league configs")
	}
	if _, err := league.NewTable(configs); err != nil {
		t.Fatalf("shipped configs should build a valid table: %v", err)
	}
}
