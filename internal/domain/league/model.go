package league

import (
	"fmt"
	"time"
)

// Tier buckets leagues by refresh urgency.
const (
	TierHigh   = "TIER_1"
	TierMedium = "TIER_2"
	TierLow    = "TIER_3"
)

// Config describes how one league is synced.
type Config struct {
	Key        string
	Name       string
	ProviderID int64
	Tier       string

	// RoundsToLoad is the forward window size; MatchesPerRound is the
	// league's typical matchday size, used to judge window fullness.
	RoundsToLoad    int
	MatchesPerRound int

	RefreshInterval time.Duration
}

// ExpectedFutureMatches is the fill target for the sliding window.
func (c Config) ExpectedFutureMatches() int {
	return c.RoundsToLoad * c.MatchesPerRound
}

func (c Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("league key is required")
	}
	if c.ProviderID <= 0 {
		return fmt.Errorf("league %s needs a provider id", c.Key)
	}
	if c.RoundsToLoad <= 0 {
		return fmt.Errorf("league %s needs a positive rounds window", c.Key)
	}
	if c.MatchesPerRound <= 0 {
		return fmt.Errorf("league %s needs a positive round size", c.Key)
	}
	switch c.Tier {
	case TierHigh, TierMedium, TierLow:
	default:
		return fmt.Errorf("league %s has unknown tier %q", c.Key, c.Tier)
	}

	return nil
}

// TierInterval returns the default refresh cadence for a tier.
func TierInterval(tier string) time.Duration {
	switch tier {
	case TierHigh:
		return 6 * time.Hour
	case TierMedium:
		return 12 * time.Hour
	default:
		return 24 * time.Hour
	}
}
