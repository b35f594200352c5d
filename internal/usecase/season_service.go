package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/platform/cache"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/refdata"
)

const (
	seasonCacheTTL         = 24 * time.Hour
	seasonFallbackCacheTTL = 6 * time.Hour
)

// Season resolution sources, in preference order.
const (
	SeasonSourceInclude  = "current_season_include"
	SeasonSourceList     = "season_list"
	SeasonSourceFallback = "reference_fallback"
)

// SeasonResolution is a resolved current season with its provenance.
type SeasonResolution struct {
	LeagueKey string
	SeasonID  int64
	Name      string
	Source    string
	Degraded  bool
}

// SeasonService resolves the current season for a league, trying the
// provider's current-season relation, then the season list, then the shipped
// fallback table. Resolutions are cached; degraded ones expire sooner.
type SeasonService struct {
	gateway ProviderGateway
	refdata *refdata.Table
	cache   *cache.Store
	logger  *logging.Logger
}

func NewSeasonService(gateway ProviderGateway, ref *refdata.Table, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		gateway: gateway,
		refdata: ref,
		cache:   cache.NewStore(seasonCacheTTL),
		logger:  logger,
	}
}

// CurrentSeasonID resolves just the season ID.
func (s *SeasonService) CurrentSeasonID(ctx context.Context, leagueKey string) (int64, error) {
	resolution, err := s.CurrentSeason(ctx, leagueKey)
	if err != nil {
		return 0, err
	}
	return resolution.SeasonID, nil
}

// CurrentSeason resolves the current season for leagueKey.
func (s *SeasonService) CurrentSeason(ctx context.Context, leagueKey string) (SeasonResolution, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.CurrentSeason")
	defer span.End()

	if leagueKey == "" {
		return SeasonResolution{}, fmt.Errorf("%w: league key is required", ErrInvalidInput)
	}

	cacheKey := "current_season_" + leagueKey
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		return cached.(SeasonResolution), nil
	}

	leagueID, ok := s.refdata.LeagueID(leagueKey)
	if !ok {
		// Without a provider id there is nothing to query; the shipped
		// fallback is the only option left.
		return s.resolveFallback(ctx, leagueKey, fmt.Errorf("%w: unknown league %q", ErrSeasonNotFound, leagueKey))
	}

	if season, found, err := s.gateway.CurrentSeason(ctx, leagueID); err == nil && found {
		resolution := SeasonResolution{
			LeagueKey: leagueKey,
			SeasonID:  season.ID,
			Name:      season.Name,
			Source:    SeasonSourceInclude,
		}
		s.cache.Set(ctx, cacheKey, resolution)
		return resolution, nil
	} else if err != nil {
		s.logger.WarnContext(ctx, "current season include failed, trying season list",
			"league", leagueKey, "error", err)
	}

	seasons, err := s.gateway.SeasonsByLeague(ctx, leagueID)
	if err == nil {
		if best, found := fixture.MostRecentSeason(seasons); found {
			if !best.IsCurrent {
				s.logger.WarnContext(ctx, "no season flagged current, using most recent",
					"league", leagueKey, "season_id", best.ID)
			}
			resolution := SeasonResolution{
				LeagueKey: leagueKey,
				SeasonID:  best.ID,
				Name:      best.Name,
				Source:    SeasonSourceList,
			}
			s.cache.Set(ctx, cacheKey, resolution)
			return resolution, nil
		}
		err = fmt.Errorf("league %s has no seasons", leagueKey)
	}

	return s.resolveFallback(ctx, leagueKey, err)
}

func (s *SeasonService) resolveFallback(ctx context.Context, leagueKey string, cause error) (SeasonResolution, error) {
	seasonID, ok := s.refdata.FallbackSeasonID(leagueKey)
	if !ok {
		return SeasonResolution{}, fmt.Errorf("%w: league %s: %v", ErrSeasonNotFound, leagueKey, cause)
	}

	s.logger.WarnContext(ctx, "using fallback season, data may be outdated",
		"league", leagueKey, "season_id", seasonID, "cause", cause)

	resolution := SeasonResolution{
		LeagueKey: leagueKey,
		SeasonID:  seasonID,
		Name:      "Fallback",
		Source:    SeasonSourceFallback,
		Degraded:  true,
	}
	s.cache.SetWithTTL(ctx, "current_season_"+leagueKey, resolution, seasonFallbackCacheTTL)
	return resolution, nil
}

// Invalidate drops the cached resolution for one league.
func (s *SeasonService) Invalidate(ctx context.Context, leagueKey string) {
	s.cache.Delete(ctx, "current_season_"+leagueKey)
}
