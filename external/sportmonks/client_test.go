package sportmonks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/platform/resilience"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

func newTestClient(t *testing.T, handler http.Handler, cfg ClientConfig) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	if cfg.Token == "" {
		cfg.Token = "test-token"
	}
	cfg.Logger = logging.NewNop()
	return NewClient(cfg), server
}

func TestClient_CurrentSeason(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagues/384" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("include") != "currentSeason" {
			t.Errorf("unexpected include %q", r.URL.Query().Get("include"))
		}
		_, _ = w.Write([]byte(`{"data":{"id":384,"name":"Serie A","currentSeason":{"id":25533,"name":"2025/2026","is_current":true}}}`))
	})
	client, _ := newTestClient(t, handler, ClientConfig{})

	season, ok, err := client.CurrentSeason(context.Background(), 384)
	if err != nil {
		t.Fatalf("CurrentSeason: %v", err)
	}
	if !ok || season.ID != 25533 || !season.IsCurrent {
		t.Fatalf("unexpected season %+v ok=%v", season, ok)
	}
	if season.LeagueID != 384 {
		t.Fatalf("league id not propagated, got %d", season.LeagueID)
	}
}

func TestClient_CurrentSeason_MissingRelation(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":384,"name":"Serie A"}}`))
	})
	client, _ := newTestClient(t, handler, ClientConfig{})

	_, ok, err := client.CurrentSeason(context.Background(), 384)
	if err != nil {
		t.Fatalf("CurrentSeason: %v", err)
	}
	if ok {
		t.Fatal("absent relation should report ok=false, not an error")
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":26164,"league_id":387,"name":"2025/2026"}]}`))
	})
	client, _ := newTestClient(t, handler, ClientConfig{MaxRetries: 3})

	seasons, err := client.SeasonsByLeague(context.Background(), 387)
	if err != nil {
		t.Fatalf("SeasonsByLeague after retries: %v", err)
	}
	if len(seasons) != 1 || seasons[0].ID != 26164 {
		t.Fatalf("unexpected seasons %+v", seasons)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("want 3 attempts, got %d", got)
	}
}

func TestClient_NonRetryableStatusFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, handler, ClientConfig{MaxRetries: 3})

	_, err := client.SeasonStages(context.Background(), 25533)
	if !errors.Is(err, usecase.ErrProvider) {
		t.Fatalf("want ErrProvider, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx should not be retried, got %d attempts", got)
	}
}

func TestClient_CachesResponses(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"id":77463996,"season_id":25533,"name":"Regular Season","rounds":[{"id":339270,"name":"1"}]}}`))
	})
	client, _ := newTestClient(t, handler, ClientConfig{})

	for i := 0; i < 3; i++ {
		rounds, err := client.StageRounds(context.Background(), 77463996)
		if err != nil {
			t.Fatalf("StageRounds: %v", err)
		}
		if len(rounds) != 1 || rounds[0].Number != 1 {
			t.Fatalf("unexpected rounds %+v", rounds)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("want 1 upstream call, got %d", got)
	}

	client.FlushCache()
	if _, err := client.StageRounds(context.Background(), 77463996); err != nil {
		t.Fatalf("StageRounds after flush: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("flush should force a refetch, got %d calls", got)
	}
}

func TestClient_CircuitOpensPerOperation(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, _ := newTestClient(t, handler, ClientConfig{
		MaxRetries: 0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:     true,
			WindowSize:  4,
			MinRequests: 2,
			FailureRate: 0.5,
			OpenTimeout: time.Minute,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FixturesByDate(context.Background(), "2026-09-05"); err == nil {
			t.Fatal("expected provider failure")
		}
		client.FlushCache()
	}

	_, err := client.FixturesByDate(context.Background(), "2026-09-06")
	if !errors.Is(err, usecase.ErrCircuitOpen) {
		t.Fatalf("want ErrCircuitOpen, got %v", err)
	}

	// Other endpoint groups keep their own circuit.
	if _, _, err := client.CurrentSeason(context.Background(), 384); errors.Is(err, usecase.ErrCircuitOpen) {
		t.Fatalf("seasons circuit should be independent, got %v", err)
	}

	states := client.BreakerStates()
	if states["fixtures"] != "open" {
		t.Fatalf("fixtures breaker state = %q", states["fixtures"])
	}
}

func TestClient_FixturesBetween_Validation(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Token: "x", Logger: logging.NewNop()})

	if _, err := client.FixturesBetween(context.Background(), "2026-09-10", "2026-09-01", 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("inverted range: want ErrInvalidInput, got %v", err)
	}
	if _, err := client.FixturesByDate(context.Background(), "05-09-2026"); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("bad date: want ErrInvalidInput, got %v", err)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText("dial tcp refused for api_token=secret-123&page=1", "secret-123")
	if got != "dial tcp refused for api_token=REDACTED&page=1" {
		t.Fatalf("token leaked: %s", got)
	}
}
