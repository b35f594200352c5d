package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/refdata"
)

func TestSeasonService_PrefersCurrentSeasonInclude(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{
		currentSeasonFn: func(leagueID int64) (fixture.Season, bool, error) {
			if leagueID != 384 {
				t.Fatalf("unexpected league id: %d", leagueID)
			}
			return fixture.Season{ID: 25533, Name: "2026/2027", IsCurrent: true}, true, nil
		},
	}
	svc := NewSeasonService(gateway, testRefdata(t), nopLogger())

	resolution, err := svc.CurrentSeason(context.Background(), "serie-a")
	if err != nil {
		t.Fatalf("CurrentSeason error: %v", err)
	}
	if resolution.SeasonID != 25533 {
		t.Fatalf("expected season 25533, got=%d", resolution.SeasonID)
	}
	if resolution.Source != SeasonSourceInclude {
		t.Fatalf("expected include source, got=%s", resolution.Source)
	}
	if resolution.Degraded {
		t.Fatal("include resolution must not be degraded")
	}
	if gateway.seasonsHits != 0 {
		t.Fatalf("season list should not be queried, hits=%d", gateway.seasonsHits)
	}
}

func TestSeasonService_FallsBackToSeasonList(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{
		seasonsFn: func(int64) ([]fixture.Season, error) {
			return []fixture.Season{
				{ID: 23746, Name: "2025/2026"},
				{ID: 25533, Name: "2026/2027"},
			}, nil
		},
	}
	svc := NewSeasonService(gateway, testRefdata(t), nopLogger())

	resolution, err := svc.CurrentSeason(context.Background(), "serie-a")
	if err != nil {
		t.Fatalf("CurrentSeason error: %v", err)
	}
	if resolution.Source != SeasonSourceList {
		t.Fatalf("expected list source, got=%s", resolution.Source)
	}
	if resolution.SeasonID != 25533 {
		t.Fatalf("expected most recent season 25533, got=%d", resolution.SeasonID)
	}
}

func TestSeasonService_UsesReferenceFallback(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{
		currentSeasonFn: func(int64) (fixture.Season, bool, error) {
			return fixture.Season{}, false, stderrors.New("provider down")
		},
		seasonsFn: func(int64) ([]fixture.Season, error) {
			return nil, stderrors.New("provider down")
		},
	}
	svc := NewSeasonService(gateway, testRefdata(t), nopLogger())

	resolution, err := svc.CurrentSeason(context.Background(), "serie-a")
	if err != nil {
		t.Fatalf("CurrentSeason error: %v", err)
	}
	if resolution.Source != SeasonSourceFallback {
		t.Fatalf("expected fallback source, got=%s", resolution.Source)
	}
	if resolution.SeasonID != 25533 {
		t.Fatalf("expected fallback season 25533, got=%d", resolution.SeasonID)
	}
	if !resolution.Degraded {
		t.Fatal("fallback resolution must be flagged degraded")
	}
}

func TestSeasonService_UnknownLeagueWithoutFallbackFails(t *testing.T) {
	t.Parallel()

	svc := NewSeasonService(&stubGateway{}, refdata.Degraded(), nopLogger())

	_, err := svc.CurrentSeason(context.Background(), "unknown-league")
	if !stderrors.Is(err, ErrSeasonNotFound) {
		t.Fatalf("expected ErrSeasonNotFound, got=%v", err)
	}
}

func TestSeasonService_CachesResolutions(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{
		currentSeasonFn: func(int64) (fixture.Season, bool, error) {
			return fixture.Season{ID: 25533, Name: "2026/2027", IsCurrent: true}, true, nil
		},
	}
	svc := NewSeasonService(gateway, testRefdata(t), nopLogger())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.CurrentSeason(ctx, "serie-a"); err != nil {
			t.Fatalf("CurrentSeason error: %v", err)
		}
	}
	if gateway.currentSeasonHits != 1 {
		t.Fatalf("expected 1 provider hit, got=%d", gateway.currentSeasonHits)
	}

	svc.Invalidate(ctx, "serie-a")
	if _, err := svc.CurrentSeason(ctx, "serie-a"); err != nil {
		t.Fatalf("CurrentSeason after invalidate error: %v", err)
	}
	if gateway.currentSeasonHits != 2 {
		t.Fatalf("expected refetch after invalidate, hits=%d", gateway.currentSeasonHits)
	}
}

func TestSeasonService_EmptyKeyRejected(t *testing.T) {
	t.Parallel()

	svc := NewSeasonService(&stubGateway{}, testRefdata(t), nopLogger())
	if _, err := svc.CurrentSeason(context.Background(), ""); !stderrors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
