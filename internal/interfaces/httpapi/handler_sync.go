package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

const maxRequestBody = 1 << 20

type syncRequest struct {
	Mode  string `json:"mode" validate:"omitempty,oneof=rounds days"`
	Count int    `json:"count" validate:"omitempty,min=1,max=20"`
}

type refreshRequest struct {
	Rounds  int  `json:"rounds" validate:"omitempty,min=1,max=20"`
	Sliding bool `json:"sliding"`
}

// RunLeagueSync triggers a one-off fixture sync for a single league.
func (h *Handler) RunLeagueSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLeagueSync")
	defer span.End()

	leagueKey := r.PathValue("leagueKey")

	var req syncRequest
	if !h.decodeOptionalBody(ctx, w, r, &req) {
		return
	}

	result, err := h.sync.SyncFixtures(ctx, leagueKey, usecase.SyncOptions{Mode: req.Mode, Count: req.Count})
	if err != nil {
		h.logger.ErrorContext(ctx, "manual sync failed", "league", leagueKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunLeagueRefresh triggers a full refresh, including the sliding window,
// for a single league.
func (h *Handler) RunLeagueRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLeagueRefresh")
	defer span.End()

	leagueKey := r.PathValue("leagueKey")

	req := refreshRequest{Sliding: true}
	if !h.decodeOptionalBody(ctx, w, r, &req) {
		return
	}

	result, err := h.manager.RefreshLeague(ctx, leagueKey, usecase.RefreshOptions{
		Rounds:  req.Rounds,
		Sliding: req.Sliding,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "manual refresh failed", "league", leagueKey, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunRefreshSweep refreshes every league whose cadence has elapsed.
func (h *Handler) RunRefreshSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshSweep")
	defer span.End()

	if err := h.manager.RefreshDueLeagues(ctx); err != nil {
		h.logger.ErrorContext(ctx, "refresh sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "completed"})
}

// decodeOptionalBody parses and validates an optional JSON request body.
// It writes the error response itself and reports whether to continue.
func (h *Handler) decodeOptionalBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err))
		return false
	}
	if len(body) == 0 {
		return true
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: malformed JSON body: %v", usecase.ErrInvalidInput, err))
		return false
	}
	if err := h.validator.Struct(out); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return false
	}
	return true
}
