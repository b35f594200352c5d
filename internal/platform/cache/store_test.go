package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStore_GetSetExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	s := NewStore(time.Hour).WithClock(func() time.Time { return now })
	ctx := context.Background()

	s.Set(ctx, "k", 42)
	if got, ok := s.Get(ctx, "k"); !ok || got != 42 {
		t.Fatalf("expected hit with 42, got %v %v", got, ok)
	}

	now = now.Add(61 * time.Minute)
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire after TTL")
	}
}

func TestStore_SetWithTTLOverridesDefault(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	s := NewStore(24 * time.Hour).WithClock(func() time.Time { return now })
	ctx := context.Background()

	s.SetWithTTL(ctx, "degraded", "25533", 6*time.Hour)

	now = now.Add(5 * time.Hour)
	if _, ok := s.Get(ctx, "degraded"); !ok {
		t.Fatal("expected entry alive inside short TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := s.Get(ctx, "degraded"); ok {
		t.Fatal("expected short-TTL entry to expire before store default")
	}
}

func TestStore_GetOrLoadCachesSuccess(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Hour)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(ctx, "k", loader)
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if got != "value" {
			t.Fatalf("load %d: unexpected value %v", i, got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one loader call, got %d", calls)
	}
}

func TestStore_GetOrLoadDoesNotCacheFailure(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Hour)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return nil, fmt.Errorf("boom %d", calls)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.GetOrLoad(ctx, "k", loader); err == nil {
			t.Fatalf("load %d: expected error", i)
		}
	}
	if calls != 2 {
		t.Fatalf("expected loader retried on failure, got %d calls", calls)
	}
}
