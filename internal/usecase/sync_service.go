package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/refdata"
)

// Sync modes. Day-based loading is the fallback when round resolution is
// unavailable for a league.
const (
	SyncModeRounds = "rounds"
	SyncModeDays   = "days"
)

const (
	defaultInterDateDelay = 200 * time.Millisecond
	fallbackDaysPerRound  = 7
)

type SyncOptions struct {
	// Mode selects round-based or day-based loading; empty means rounds.
	Mode string
	// Count is rounds to load in rounds mode, days in days mode.
	Count int
}

type SyncResult struct {
	LeagueKey      string
	Mode           string
	FellBack       bool
	TotalFixtures  int
	NewMatches     int
	UpdatedMatches int
	DatesProcessed int
	Dates          []DateResult
	Errors         []string
}

type DateResult struct {
	Date     string
	Fixtures int
	New      int
	Err      string
}

// SyncService loads fixtures date by date and upserts them as matches.
type SyncService struct {
	gateway ProviderGateway
	mapper  FixtureMapper
	rounds  *RoundsService
	matches match.Repository
	leagues *league.Table
	refdata *refdata.Table

	interDateDelay time.Duration
	logger         *logging.Logger
	now            func() time.Time
}

func NewSyncService(
	gateway ProviderGateway,
	mapper FixtureMapper,
	rounds *RoundsService,
	matches match.Repository,
	leagues *league.Table,
	ref *refdata.Table,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		gateway:        gateway,
		mapper:         mapper,
		rounds:         rounds,
		matches:        matches,
		leagues:        leagues,
		refdata:        ref,
		interDateDelay: defaultInterDateDelay,
		logger:         logger,
		now:            time.Now,
	}
}

// WithInterDateDelay overrides the pause between per-date provider calls.
func (s *SyncService) WithInterDateDelay(delay time.Duration) *SyncService {
	if delay >= 0 {
		s.interDateDelay = delay
	}
	return s
}

// WithClock overrides the time source for tests.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// SyncFixtures loads upcoming fixtures for one league. In rounds mode the
// dates come from the round window; when that fails the sync degrades to a
// day-based window of count*7 days and keeps going.
func (s *SyncService) SyncFixtures(ctx context.Context, leagueKey string, opts SyncOptions) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncFixtures")
	defer span.End()

	cfg, ok := s.leagues.Get(leagueKey)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: unknown league %q", ErrInvalidInput, leagueKey)
	}

	mode := opts.Mode
	if mode == "" {
		mode = SyncModeRounds
	}
	if mode != SyncModeRounds && mode != SyncModeDays {
		return SyncResult{}, fmt.Errorf("%w: unknown sync mode %q", ErrInvalidInput, opts.Mode)
	}
	count := opts.Count
	if count <= 0 {
		count = cfg.RoundsToLoad
	}

	result := SyncResult{LeagueKey: leagueKey, Mode: mode}

	var dates []string
	if mode == SyncModeRounds {
		roundDates, err := s.rounds.RoundDates(ctx, leagueKey, count)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "round window unavailable, falling back to day-based sync",
				"league", leagueKey, "error", err)
			result.FellBack = true
			result.Errors = append(result.Errors, err.Error())
		case len(roundDates) == 0:
			s.logger.InfoContext(ctx, "round window is empty, falling back to day-based sync",
				"league", leagueKey)
			result.FellBack = true
		default:
			dates = roundDates
		}
		if result.FellBack {
			result.Mode = SyncModeDays
			dates = s.dayWindow(count * fallbackDaysPerRound)
		}
	} else {
		dates = s.dayWindow(count)
	}

	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dateResult := s.syncDate(ctx, cfg, date)
		result.Dates = append(result.Dates, dateResult)
		result.DatesProcessed++
		result.TotalFixtures += dateResult.Fixtures
		if dateResult.Err != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", date, dateResult.Err))
		}

		if s.interDateDelay > 0 && i < len(dates)-1 {
			timer := time.NewTimer(s.interDateDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return result, ctx.Err()
			case <-timer.C:
			}
		}
	}

	for _, d := range result.Dates {
		result.NewMatches += d.New
	}
	result.UpdatedMatches = result.TotalFixtures - result.NewMatches

	s.logger.InfoContext(ctx, "league sync finished",
		"league", leagueKey,
		"mode", result.Mode,
		"fell_back", result.FellBack,
		"dates", result.DatesProcessed,
		"fixtures", result.TotalFixtures,
		"new", result.NewMatches,
		"updated", result.UpdatedMatches,
		"errors", len(result.Errors))
	return result, nil
}

// syncDate loads one calendar day. A failed date never aborts the run.
func (s *SyncService) syncDate(ctx context.Context, cfg league.Config, date string) DateResult {
	out := DateResult{Date: date}

	raws, err := s.gateway.FixturesByDate(ctx, date)
	if err != nil {
		out.Err = err.Error()
		return out
	}

	batch := s.mapper.MapFixtures(raws).FilterByLeague(cfg.ProviderID)
	out.Fixtures = len(batch.Fixtures)
	if len(batch.Failures) > 0 {
		s.logger.WarnContext(ctx, "some fixtures failed to map",
			"league", cfg.Key, "date", date, "failed", len(batch.Failures))
	}

	for _, f := range batch.Fixtures {
		created, err := s.storeFixture(ctx, cfg, f)
		if err != nil {
			out.Err = err.Error()
			continue
		}
		if created {
			out.New++
		}
	}
	return out
}

// storeFixture upserts one normalized fixture. Returns true when the row was
// new rather than refreshed.
func (s *SyncService) storeFixture(ctx context.Context, cfg league.Config, f fixture.Standard) (bool, error) {
	_, exists, err := s.matches.FindByExternalID(ctx, f.Provider, f.ExternalID)
	if err != nil {
		return false, fmt.Errorf("lookup match %s: %w", f.ExternalID, err)
	}

	m := s.toMatch(cfg, f)
	if err := s.matches.Upsert(ctx, m); err != nil {
		return false, fmt.Errorf("upsert match %s: %w", f.ExternalID, err)
	}
	return !exists, nil
}

func (s *SyncService) toMatch(cfg league.Config, f fixture.Standard) match.Match {
	home, _ := f.Home()
	away, _ := f.Away()

	roundNumber := 0
	if f.Meta.RoundID != "" {
		if id, err := strconv.ParseInt(f.Meta.RoundID, 10, 64); err == nil {
			if n, ok := s.refdata.RoundNumber(cfg.Key, id); ok {
				roundNumber = n
			}
		}
	}

	return match.Match{
		ExternalID:   f.ExternalID,
		Provider:     f.Provider,
		HomeTeam:     home.Name,
		AwayTeam:     away.Name,
		HomeTeamLogo: home.Image,
		AwayTeamLogo: away.Image,
		LeagueKey:    cfg.Key,
		LeagueID:     f.League.ID,
		LeagueName:   f.League.Name,
		LeagueLogo:   f.League.Logo,
		Date:         f.Date,
		Time:         f.Time,
		RoundID:      f.Meta.RoundID,
		RoundNumber:  roundNumber,
		Status:       f.Status.Code,
		Source:       f.Provider,
		LastSyncedAt: s.now().UTC(),
	}
}

// roundNumber maps a provider round ID string to its matchday number.
func (s *SyncService) roundNumber(leagueKey, roundID string) (int, bool) {
	id, err := strconv.ParseInt(roundID, 10, 64)
	if err != nil {
		return 0, false
	}
	return s.refdata.RoundNumber(leagueKey, id)
}

func (s *SyncService) dayWindow(days int) []string {
	if days <= 0 {
		days = 1
	}
	start := s.now().UTC().Truncate(24 * time.Hour)
	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, start.Add(time.Duration(i)*24*time.Hour).Format("2006-01-02"))
	}
	return dates
}
