package httpapi

import (
	"net/http"

	"github.com/sportsdock/fixture-sync/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerLeagueRoutes(mux, handler)
	registerInternalRoutes(mux, handler, internalToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/providers/health", handler.ProvidersHealth)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueKey}/stats", handler.GetLeagueStats)
	mux.HandleFunc("GET /v1/leagues/{leagueKey}/matches", handler.ListLeagueMatches)
	mux.HandleFunc("GET /v1/leagues/{leagueKey}/rounds", handler.GetLeagueRounds)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalToken string) {
	mux.Handle("POST /v1/internal/refresh", RequireInternalToken(internalToken, http.HandlerFunc(handler.RunRefreshSweep)))
	mux.Handle("POST /v1/internal/leagues/{leagueKey}/refresh", RequireInternalToken(internalToken, http.HandlerFunc(handler.RunLeagueRefresh)))
	mux.Handle("POST /v1/internal/leagues/{leagueKey}/sync", RequireInternalToken(internalToken, http.HandlerFunc(handler.RunLeagueSync)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
