package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

type leagueDTO struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	ProviderID      int64  `json:"providerId"`
	Tier            string `json:"tier"`
	RoundsToLoad    int    `json:"roundsToLoad"`
	MatchesPerRound int    `json:"matchesPerRound"`
	RefreshInterval string `json:"refreshInterval"`
	LastRefreshedAt string `json:"lastRefreshedAt,omitempty"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	configs := h.manager.Leagues()
	out := make([]leagueDTO, 0, len(configs))
	for _, cfg := range configs {
		dto := leagueDTO{
			Key:             cfg.Key,
			Name:            cfg.Name,
			ProviderID:      cfg.ProviderID,
			Tier:            cfg.Tier,
			RoundsToLoad:    cfg.RoundsToLoad,
			MatchesPerRound: cfg.MatchesPerRound,
			RefreshInterval: cfg.RefreshInterval.String(),
		}
		if at, ok := h.manager.LastRefresh(cfg.Key); ok {
			dto.LastRefreshedAt = at.UTC().Format(time.RFC3339)
		}
		out = append(out, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type leagueStatsDTO struct {
	Key              string `json:"key"`
	Tier             string `json:"tier"`
	StoredMatches    int    `json:"storedMatches"`
	FutureWithRound  int    `json:"futureWithRound"`
	FutureTotal      int    `json:"futureTotal"`
	ExpectedFuture   int    `json:"expectedFuture"`
	ImportantMatches int    `json:"importantMatches"`
}

func (h *Handler) GetLeagueStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStats")
	defer span.End()

	leagueKey := r.PathValue("leagueKey")
	cfg, ok := h.leagueConfig(leagueKey)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown league %q", usecase.ErrNotFound, leagueKey))
		return
	}

	today := time.Now().UTC().Format("2006-01-02")
	total, err := h.matches.CountWhere(ctx, match.Filter{LeagueKey: cfg.Key})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	futureTotal, err := h.matches.CountWhere(ctx, match.Filter{LeagueKey: cfg.Key, DateFrom: today})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	withRound := true
	futureWithRound, err := h.matches.CountWhere(ctx, match.Filter{LeagueKey: cfg.Key, DateFrom: today, WithRound: &withRound})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	upcoming, err := h.matches.ListWhere(ctx, match.Filter{LeagueKey: cfg.Key, DateFrom: today})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	important := 0
	for _, m := range upcoming {
		if m.Importance != nil {
			important++
		}
	}

	writeSuccess(ctx, w, http.StatusOK, leagueStatsDTO{
		Key:              cfg.Key,
		Tier:             cfg.Tier,
		StoredMatches:    total,
		FutureWithRound:  futureWithRound,
		FutureTotal:      futureTotal,
		ExpectedFuture:   cfg.ExpectedFutureMatches(),
		ImportantMatches: important,
	})
}

type matchDTO struct {
	ExternalID  string         `json:"externalId"`
	Provider    string         `json:"provider"`
	HomeTeam    string         `json:"homeTeam"`
	AwayTeam    string         `json:"awayTeam"`
	LeagueKey   string         `json:"leagueKey"`
	LeagueName  string         `json:"leagueName"`
	Date        string         `json:"date"`
	Time        string         `json:"time,omitempty"`
	RoundID     string         `json:"roundId,omitempty"`
	RoundNumber int            `json:"roundNumber,omitempty"`
	Status      string         `json:"status"`
	Importance  *importanceDTO `json:"importance,omitempty"`
}

type importanceDTO struct {
	Label    string `json:"label"`
	Priority string `json:"priority"`
}

func (h *Handler) ListLeagueMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMatches")
	defer span.End()

	leagueKey := r.PathValue("leagueKey")
	cfg, ok := h.leagueConfig(leagueKey)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown league %q", usecase.ErrNotFound, leagueKey))
		return
	}

	filter := match.Filter{LeagueKey: cfg.Key}
	if from := r.URL.Query().Get("from"); from != "" {
		if !validDateParam(from) {
			writeError(ctx, w, fmt.Errorf("%w: from must be YYYY-MM-DD", usecase.ErrInvalidInput))
			return
		}
		filter.DateFrom = from
	} else {
		filter.DateFrom = time.Now().UTC().Format("2006-01-02")
	}

	stored, err := h.matches.ListWhere(ctx, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(stored))
	for _, m := range stored {
		dto := matchDTO{
			ExternalID:  m.ExternalID,
			Provider:    m.Provider,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			LeagueKey:   m.LeagueKey,
			LeagueName:  m.LeagueName,
			Date:        m.Date,
			Time:        m.Time,
			RoundID:     m.RoundID,
			RoundNumber: m.RoundNumber,
			Status:      m.Status,
		}
		if m.Importance != nil {
			dto.Importance = &importanceDTO{Label: m.Importance.Label, Priority: m.Importance.Priority}
		}
		out = append(out, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

type roundWindowDTO struct {
	LeagueKey       string   `json:"leagueKey"`
	SeasonID        int64    `json:"seasonId"`
	StageID         int64    `json:"stageId"`
	StageName       string   `json:"stageName"`
	RequestedRounds int      `json:"requestedRounds"`
	FoundRounds     int      `json:"foundRounds"`
	FixtureCount    int      `json:"fixtureCount"`
	ExcludedRounds  []int64  `json:"excludedRounds,omitempty"`
	Message         string   `json:"message,omitempty"`
	Dates           []string `json:"dates"`
}

func (h *Handler) GetLeagueRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueRounds")
	defer span.End()

	leagueKey := r.PathValue("leagueKey")
	cfg, ok := h.leagueConfig(leagueKey)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown league %q", usecase.ErrNotFound, leagueKey))
		return
	}

	count := cfg.RoundsToLoad
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: count must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		count = parsed
	}

	window, err := h.rounds.NextRounds(ctx, cfg.Key, count)
	if err != nil {
		h.logger.ErrorContext(ctx, "round window failed", "league", cfg.Key, "error", err)
		writeError(ctx, w, err)
		return
	}
	dates, err := h.rounds.RoundDates(ctx, cfg.Key, count)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundWindowDTO{
		LeagueKey:       window.Metadata.LeagueKey,
		SeasonID:        window.Metadata.SeasonID,
		StageID:         window.Metadata.StageID,
		StageName:       window.Metadata.StageName,
		RequestedRounds: window.Metadata.RequestedRounds,
		FoundRounds:     window.Metadata.FoundRounds,
		FixtureCount:    window.Metadata.FixtureCount,
		ExcludedRounds:  window.Metadata.ExcludedRounds,
		Message:         window.Metadata.Message,
		Dates:           dates,
	})
}

func (h *Handler) leagueConfig(key string) (league.Config, bool) {
	for _, candidate := range h.manager.Leagues() {
		if candidate.Key == key {
			return candidate, true
		}
	}
	return league.Config{}, false
}

func validDateParam(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
