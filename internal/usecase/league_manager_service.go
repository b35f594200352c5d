package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
)

const (
	defaultBackfillLookahead = 30 * 24 * time.Hour
	defaultRefreshPoolSize   = 4
)

type RefreshOptions struct {
	// Rounds overrides the league's configured window size.
	Rounds int
	// Sliding runs the sliding-window maintenance after the sync.
	// Refreshes default to sliding; top-ups triggered by the window
	// itself do not slide again.
	Sliding bool
}

type RefreshResult struct {
	LeagueKey       string
	Tier            string
	Sync            SyncResult
	RemovedOld      int
	BackfilledIDs   int
	FutureWithRound int
	ExpectedFuture  int
	ToppedUp        bool
	ImportantFound  int
	Duration        time.Duration
}

type LeagueManagerConfig struct {
	BackfillLookahead time.Duration
	RefreshPoolSize   int
	// DisableTopUp turns off the automatic second sync when the forward
	// window is under-filled.
	DisableTopUp bool
}

// LeagueManagerService owns per-league sync policy: tiered refresh cadence,
// the sliding retention window, round ID backfill and importance tagging.
type LeagueManagerService struct {
	sync     *SyncService
	gateway  ProviderGateway
	mapper   FixtureMapper
	matches  match.Repository
	leagues  *league.Table
	patterns ImportancePatterns

	lookahead time.Duration
	poolSize  int
	topUp     bool

	mu          sync.Mutex
	lastRefresh map[string]time.Time

	logger *logging.Logger
	now    func() time.Time
}

func NewLeagueManagerService(
	syncSvc *SyncService,
	gateway ProviderGateway,
	mapper FixtureMapper,
	matches match.Repository,
	leagues *league.Table,
	cfg LeagueManagerConfig,
	logger *logging.Logger,
) *LeagueManagerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BackfillLookahead <= 0 {
		cfg.BackfillLookahead = defaultBackfillLookahead
	}
	if cfg.RefreshPoolSize <= 0 {
		cfg.RefreshPoolSize = defaultRefreshPoolSize
	}
	return &LeagueManagerService{
		sync:        syncSvc,
		gateway:     gateway,
		mapper:      mapper,
		matches:     matches,
		leagues:     leagues,
		patterns:    DefaultImportancePatterns(),
		lookahead:   cfg.BackfillLookahead,
		poolSize:    cfg.RefreshPoolSize,
		topUp:       !cfg.DisableTopUp,
		lastRefresh: make(map[string]time.Time),
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *LeagueManagerService) WithClock(now func() time.Time) *LeagueManagerService {
	s.now = now
	return s
}

// WithPatterns replaces the importance patterns.
func (s *LeagueManagerService) WithPatterns(patterns ImportancePatterns) *LeagueManagerService {
	s.patterns = patterns
	return s
}

// Leagues exposes the managed league configs.
func (s *LeagueManagerService) Leagues() []league.Config {
	return s.leagues.All()
}

// RefreshLeague syncs one league and, for sliding refreshes, maintains the
// retention window and importance tags afterwards.
func (s *LeagueManagerService) RefreshLeague(ctx context.Context, leagueKey string, opts RefreshOptions) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "LeagueManagerService.RefreshLeague")
	defer span.End()

	started := s.now()
	cfg, ok := s.leagues.Get(leagueKey)
	if !ok {
		return RefreshResult{}, fmt.Errorf("%w: league %q is not managed", ErrInvalidInput, leagueKey)
	}

	rounds := opts.Rounds
	if rounds <= 0 {
		rounds = cfg.RoundsToLoad
	}

	result := RefreshResult{LeagueKey: leagueKey, Tier: cfg.Tier}
	syncResult, err := s.sync.SyncFixtures(ctx, leagueKey, SyncOptions{Mode: SyncModeRounds, Count: rounds})
	if err != nil {
		return result, err
	}
	result.Sync = syncResult

	if opts.Sliding {
		if err := s.runSlidingWindow(ctx, cfg, &result); err != nil {
			s.logger.WarnContext(ctx, "sliding window maintenance failed",
				"league", leagueKey, "error", err)
		}
	}

	found, err := s.tagImportantMatches(ctx, cfg)
	if err != nil {
		s.logger.WarnContext(ctx, "importance tagging failed", "league", leagueKey, "error", err)
	}
	result.ImportantFound = found

	s.mu.Lock()
	s.lastRefresh[leagueKey] = s.now()
	s.mu.Unlock()

	result.Duration = s.now().Sub(started)
	s.logger.InfoContext(ctx, "league refresh complete",
		"league", leagueKey,
		"tier", cfg.Tier,
		"fixtures", syncResult.TotalFixtures,
		"removed_old", result.RemovedOld,
		"backfilled", result.BackfilledIDs,
		"topped_up", result.ToppedUp,
		"important", result.ImportantFound,
		"duration", result.Duration)
	return result, nil
}

// RefreshDueLeagues refreshes every league whose tier cadence has elapsed,
// fanning the work out over a bounded pool. Per-league failures are logged
// and do not stop the sweep.
func (s *LeagueManagerService) RefreshDueLeagues(ctx context.Context) error {
	due := s.dueLeagues()
	if len(due) == 0 {
		return nil
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return fmt.Errorf("create refresh pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, key := range due {
		leagueKey := key
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := s.RefreshLeague(ctx, leagueKey, RefreshOptions{Sliding: true}); err != nil {
				s.logger.ErrorContext(ctx, "scheduled league refresh failed",
					"league", leagueKey, "error", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			s.logger.ErrorContext(ctx, "could not submit refresh task",
				"league", leagueKey, "error", submitErr)
		}
	}
	wg.Wait()
	return nil
}

// RunScheduler wakes on the interval and refreshes due leagues until the
// context is cancelled.
func (s *LeagueManagerService) RunScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("league refresh scheduler started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("league refresh scheduler stopped")
			return
		case <-ticker.C:
			if err := s.RefreshDueLeagues(ctx); err != nil {
				s.logger.ErrorContext(ctx, "scheduled refresh sweep failed", "error", err)
			}
		}
	}
}

// LastRefresh reports when a league was last refreshed.
func (s *LeagueManagerService) LastRefresh(leagueKey string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.lastRefresh[leagueKey]
	return at, ok
}

func (s *LeagueManagerService) dueLeagues() []string {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]string, 0, s.leagues.Len())
	for _, cfg := range s.leagues.All() {
		last, ok := s.lastRefresh[cfg.Key]
		if !ok || now.Sub(last) >= cfg.RefreshInterval {
			due = append(due, cfg.Key)
		}
	}
	return due
}

// runSlidingWindow removes stale matches, backfills missing round IDs and
// tops the window up when too few future matches carry a round.
func (s *LeagueManagerService) runSlidingWindow(ctx context.Context, cfg league.Config, result *RefreshResult) error {
	today := s.now().UTC().Truncate(24 * time.Hour)
	yesterday := today.Add(-24 * time.Hour).Format("2006-01-02")
	todayStr := today.Format("2006-01-02")

	removed, err := s.matches.DeleteWhere(ctx, match.Filter{LeagueKey: cfg.Key, DateBefore: yesterday})
	if err != nil {
		return fmt.Errorf("remove stale matches: %w", err)
	}
	result.RemovedOld = removed

	backfilled, err := s.backfillRoundIDs(ctx, cfg, todayStr)
	if err != nil {
		s.logger.WarnContext(ctx, "round id backfill failed", "league", cfg.Key, "error", err)
	}
	result.BackfilledIDs = backfilled

	withRound := true
	future, err := s.matches.CountWhere(ctx, match.Filter{
		LeagueKey: cfg.Key,
		DateFrom:  todayStr,
		WithRound: &withRound,
	})
	if err != nil {
		return fmt.Errorf("count future matches: %w", err)
	}
	result.FutureWithRound = future
	result.ExpectedFuture = cfg.ExpectedFutureMatches()

	if future < result.ExpectedFuture && s.topUp {
		s.logger.WarnContext(ctx, "forward window under-filled, running top-up sync",
			"league", cfg.Key, "future_with_round", future, "expected", result.ExpectedFuture)
		// Non-sliding on purpose: a top-up must not recurse.
		if _, err := s.RefreshLeague(ctx, cfg.Key, RefreshOptions{Rounds: cfg.RoundsToLoad, Sliding: false}); err != nil {
			s.logger.ErrorContext(ctx, "top-up refresh failed", "league", cfg.Key, "error", err)
		} else {
			result.ToppedUp = true
		}
	}
	return nil
}

// backfillRoundIDs fills the round ID of stored future matches that lack one
// by refetching the lookahead span in a single range call.
func (s *LeagueManagerService) backfillRoundIDs(ctx context.Context, cfg league.Config, todayStr string) (int, error) {
	withoutRound := false
	missing, err := s.matches.ListWhere(ctx, match.Filter{
		LeagueKey: cfg.Key,
		DateFrom:  todayStr,
		WithRound: &withoutRound,
	})
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	end := s.now().UTC().Add(s.lookahead).Format("2006-01-02")
	raws, err := s.gateway.FixturesBetween(ctx, todayStr, end, cfg.ProviderID)
	if err != nil {
		return 0, err
	}

	batch := s.mapper.MapFixtures(raws)
	roundByExternalID := make(map[string]string, len(batch.Fixtures))
	for _, f := range batch.Fixtures {
		if f.Meta.RoundID != "" {
			roundByExternalID[f.ExternalID] = f.Meta.RoundID
		}
	}

	updated := 0
	for _, m := range missing {
		roundID, ok := roundByExternalID[m.ExternalID]
		if !ok {
			continue
		}
		m.RoundID = roundID
		if n, found := s.refdataRoundNumber(cfg.Key, roundID); found {
			m.RoundNumber = n
		}
		if err := s.matches.Upsert(ctx, m); err != nil {
			s.logger.WarnContext(ctx, "round id backfill upsert failed",
				"league", cfg.Key, "match", m.ExternalID, "error", err)
			continue
		}
		updated++
	}

	s.logger.InfoContext(ctx, "round id backfill finished",
		"league", cfg.Key, "missing", len(missing), "updated", updated)
	return updated, nil
}

func (s *LeagueManagerService) refdataRoundNumber(leagueKey, roundID string) (int, bool) {
	return s.sync.roundNumber(leagueKey, roundID)
}

// tagImportantMatches marks stored future matches that fit a derby or
// rivalry pattern. Tags are advisory and idempotent.
func (s *LeagueManagerService) tagImportantMatches(ctx context.Context, cfg league.Config) (int, error) {
	todayStr := s.now().UTC().Format("2006-01-02")
	upcoming, err := s.matches.ListWhere(ctx, match.Filter{LeagueKey: cfg.Key, DateFrom: todayStr})
	if err != nil {
		return 0, err
	}

	found := 0
	for _, m := range upcoming {
		importance := s.patterns.Classify(cfg.Key, m.HomeTeam, m.AwayTeam)
		if importance == nil {
			continue
		}
		found++
		if m.Importance != nil && *m.Importance == *importance {
			continue
		}
		m.Importance = importance
		if err := s.matches.Upsert(ctx, m); err != nil {
			s.logger.WarnContext(ctx, "importance tag upsert failed",
				"league", cfg.Key, "match", m.ExternalID, "error", err)
		}
	}
	return found, nil
}
