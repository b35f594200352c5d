package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/platform/cache"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
)

const (
	stageCacheTTL       = 6 * time.Hour
	roundsCacheTTL      = 3 * time.Hour
	roundWindowCacheTTL = time.Hour

	defaultRoundFillRatio   = 0.8
	defaultTypicalRoundSize = 6
)

// RoundWindow is the resolved forward-looking slice of a league's schedule.
type RoundWindow struct {
	Fixtures []fixture.Standard
	Rounds   []fixture.Round
	Metadata RoundWindowMetadata
}

type RoundWindowMetadata struct {
	LeagueKey       string
	SeasonID        int64
	StageID         int64
	StageName       string
	RequestedRounds int
	FoundRounds     int
	FixtureCount    int
	ExcludedRounds  []int64
	Message         string
}

type RoundsServiceConfig struct {
	// RoundFillRatio and TypicalRoundSize drive the completeness check: a
	// round whose fixture count is under ratio*roundSize is excluded
	// unless that would empty the window.
	RoundFillRatio   float64
	TypicalRoundSize int
}

// RoundsService resolves the next N rounds of a league and their fixtures.
type RoundsService struct {
	gateway ProviderGateway
	mapper  FixtureMapper
	seasons *SeasonService
	leagues *league.Table

	stageCache  *cache.Store
	roundsCache *cache.Store
	windowCache *cache.Store

	fillRatio float64
	roundSize int
	logger    *logging.Logger
	now       func() time.Time
}

func NewRoundsService(
	gateway ProviderGateway,
	mapper FixtureMapper,
	seasons *SeasonService,
	leagues *league.Table,
	cfg RoundsServiceConfig,
	logger *logging.Logger,
) *RoundsService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RoundFillRatio <= 0 || cfg.RoundFillRatio > 1 {
		cfg.RoundFillRatio = defaultRoundFillRatio
	}
	if cfg.TypicalRoundSize <= 0 {
		cfg.TypicalRoundSize = defaultTypicalRoundSize
	}
	return &RoundsService{
		gateway:     gateway,
		mapper:      mapper,
		seasons:     seasons,
		leagues:     leagues,
		stageCache:  cache.NewStore(stageCacheTTL),
		roundsCache: cache.NewStore(roundsCacheTTL),
		windowCache: cache.NewStore(roundWindowCacheTTL),
		fillRatio:   cfg.RoundFillRatio,
		roundSize:   cfg.TypicalRoundSize,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *RoundsService) WithClock(now func() time.Time) *RoundsService {
	s.now = now
	return s
}

// NextRounds resolves the next roundCount upcoming rounds and their
// fixtures. An exhausted season yields an empty window, not an error.
func (s *RoundsService) NextRounds(ctx context.Context, leagueKey string, roundCount int) (RoundWindow, error) {
	ctx, span := startUsecaseSpan(ctx, "RoundsService.NextRounds")
	defer span.End()

	if leagueKey == "" {
		return RoundWindow{}, fmt.Errorf("%w: league key is required", ErrInvalidInput)
	}
	if roundCount <= 0 {
		roundCount = 1
	}

	cacheKey := fmt.Sprintf("window_%s_%d", leagueKey, roundCount)
	if cached, ok := s.windowCache.Get(ctx, cacheKey); ok {
		return cached.(RoundWindow), nil
	}

	seasonID, err := s.seasons.CurrentSeasonID(ctx, leagueKey)
	if err != nil {
		return RoundWindow{}, fmt.Errorf("%w: league %s: %v", ErrRoundResolution, leagueKey, err)
	}

	stage, err := s.currentStage(ctx, seasonID)
	if err != nil {
		return RoundWindow{}, fmt.Errorf("%w: league %s: %v", ErrRoundResolution, leagueKey, err)
	}

	upcoming, err := s.upcomingRounds(ctx, stage.ID, roundCount)
	if err != nil {
		return RoundWindow{}, fmt.Errorf("%w: league %s: %v", ErrRoundResolution, leagueKey, err)
	}

	metadata := RoundWindowMetadata{
		LeagueKey:       leagueKey,
		SeasonID:        seasonID,
		StageID:         stage.ID,
		StageName:       stage.Name,
		RequestedRounds: roundCount,
		FoundRounds:     len(upcoming),
	}
	if len(upcoming) == 0 {
		metadata.Message = "no upcoming rounds, season may be over"
		window := RoundWindow{Metadata: metadata}
		s.windowCache.Set(ctx, cacheKey, window)
		return window, nil
	}

	roundIDs := make([]int64, 0, len(upcoming))
	for _, r := range upcoming {
		roundIDs = append(roundIDs, r.ID)
	}

	raws, err := s.gateway.FixturesByRounds(ctx, roundIDs)
	if err != nil {
		return RoundWindow{}, fmt.Errorf("%w: league %s rounds %v: %v", ErrRoundResolution, leagueKey, roundIDs, err)
	}

	batch := s.mapper.MapFixtures(raws)
	if len(batch.Failures) > 0 {
		s.logger.WarnContext(ctx, "some round fixtures failed to map",
			"league", leagueKey, "failed", len(batch.Failures), "mapped", len(batch.Fixtures))
	}

	rounds, fixtures, excluded := s.applyCompleteness(leagueKey, upcoming, batch.Fixtures)
	metadata.ExcludedRounds = excluded
	metadata.FixtureCount = len(fixtures)
	if len(excluded) > 0 {
		metadata.Message = "excluded rounds with too few fixtures"
	}

	window := RoundWindow{Fixtures: fixtures, Rounds: rounds, Metadata: metadata}
	s.windowCache.Set(ctx, cacheKey, window)
	return window, nil
}

// RoundDates lists the distinct calendar days covered by the next
// roundCount rounds, sorted ascending.
func (s *RoundsService) RoundDates(ctx context.Context, leagueKey string, roundCount int) ([]string, error) {
	window, err := s.NextRounds(ctx, leagueKey, roundCount)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, 8)
	for _, r := range window.Rounds {
		for _, day := range expandRoundDays(r) {
			seen[day] = struct{}{}
		}
	}
	for _, f := range window.Fixtures {
		if f.Date != "" {
			seen[f.Date] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for day := range seen {
		dates = append(dates, day)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *RoundsService) currentStage(ctx context.Context, seasonID int64) (fixture.Stage, error) {
	cacheKey := "stage_" + strconv.FormatInt(seasonID, 10)
	if cached, ok := s.stageCache.Get(ctx, cacheKey); ok {
		return cached.(fixture.Stage), nil
	}

	stages, err := s.gateway.SeasonStages(ctx, seasonID)
	if err != nil {
		return fixture.Stage{}, err
	}
	if len(stages) == 0 {
		return fixture.Stage{}, fmt.Errorf("no stages found for season %d", seasonID)
	}

	stage, matched := pickMainStage(stages)
	if !matched {
		s.logger.WarnContext(ctx, "no regular season stage found, using first",
			"season_id", seasonID, "stage", stage.Name)
	}

	s.stageCache.Set(ctx, cacheKey, stage)
	return stage, nil
}

func (s *RoundsService) upcomingRounds(ctx context.Context, stageID int64, count int) ([]fixture.Round, error) {
	cacheKey := "rounds_" + strconv.FormatInt(stageID, 10)
	var all []fixture.Round
	if cached, ok := s.roundsCache.Get(ctx, cacheKey); ok {
		all = cached.([]fixture.Round)
	} else {
		fetched, err := s.gateway.StageRounds(ctx, stageID)
		if err != nil {
			return nil, err
		}
		fixture.SortRounds(fetched)
		s.roundsCache.Set(ctx, cacheKey, fetched)
		all = fetched
	}

	now := s.now().UTC()
	upcoming := make([]fixture.Round, 0, count)
	for _, r := range all {
		if !r.IsUpcoming(now) {
			continue
		}
		upcoming = append(upcoming, r)
		if len(upcoming) == count {
			break
		}
	}
	return upcoming, nil
}

// applyCompleteness drops rounds whose fixture count is below the fill
// threshold, unless that would drop every round in the window.
func (s *RoundsService) applyCompleteness(leagueKey string, rounds []fixture.Round, fixtures []fixture.Standard) ([]fixture.Round, []fixture.Standard, []int64) {
	roundSize := s.roundSize
	if cfg, ok := s.leagues.Get(leagueKey); ok && cfg.MatchesPerRound > 0 {
		roundSize = cfg.MatchesPerRound
	}
	threshold := int(math.Ceil(s.fillRatio * float64(roundSize)))

	counts := make(map[int64]int, len(rounds))
	for _, f := range fixtures {
		if f.Meta.RoundID == "" {
			continue
		}
		if id, err := strconv.ParseInt(f.Meta.RoundID, 10, 64); err == nil {
			counts[id]++
		}
	}

	kept := make([]fixture.Round, 0, len(rounds))
	var excluded []int64
	for _, r := range rounds {
		if counts[r.ID] < threshold {
			excluded = append(excluded, r.ID)
			continue
		}
		kept = append(kept, r)
	}

	if len(kept) == 0 {
		// Better a thin window than none at all.
		return rounds, fixtures, nil
	}
	if len(excluded) == 0 {
		return kept, fixtures, nil
	}

	keptIDs := make(map[int64]struct{}, len(kept))
	for _, r := range kept {
		keptIDs[r.ID] = struct{}{}
	}
	keptFixtures := make([]fixture.Standard, 0, len(fixtures))
	for _, f := range fixtures {
		id, err := strconv.ParseInt(f.Meta.RoundID, 10, 64)
		if err != nil {
			continue
		}
		if _, ok := keptIDs[id]; ok {
			keptFixtures = append(keptFixtures, f)
		}
	}
	return kept, keptFixtures, excluded
}

func pickMainStage(stages []fixture.Stage) (fixture.Stage, bool) {
	for _, stage := range stages {
		name := strings.ToLower(stage.Name)
		if strings.Contains(name, "regular season") ||
			strings.Contains(name, "regular") ||
			strings.Contains(name, "main") ||
			stage.TypeID == 1 {
			return stage, true
		}
	}
	return stages[0], false
}

func expandRoundDays(r fixture.Round) []string {
	if r.StartsAt == nil {
		return nil
	}
	start := r.StartsAt.UTC().Truncate(24 * time.Hour)
	end := start
	if r.EndsAt != nil {
		end = r.EndsAt.UTC().Truncate(24 * time.Hour)
	}
	if end.Before(start) {
		end = start
	}

	days := make([]string, 0, 4)
	for day := start; !day.After(end); day = day.Add(24 * time.Hour) {
		days = append(days, day.Format("2006-01-02"))
	}
	return days
}
