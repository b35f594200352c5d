// Package app is the composition root: it builds the fixture source, the
// persistence layer and the sync services from configuration and exposes
// the HTTP server plus the background refresh scheduler.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/sportsdock/fixture-sync/external/sportmonks"
	"github.com/sportsdock/fixture-sync/external/staticfix"
	"github.com/sportsdock/fixture-sync/internal/config"
	"github.com/sportsdock/fixture-sync/internal/domain/league"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	"github.com/sportsdock/fixture-sync/internal/infrastructure/repository/memory"
	"github.com/sportsdock/fixture-sync/internal/infrastructure/repository/postgres"
	"github.com/sportsdock/fixture-sync/internal/interfaces/httpapi"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/platform/resilience"
	"github.com/sportsdock/fixture-sync/internal/refdata"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

// App holds the wired service graph.
type App struct {
	Config  config.Config
	Server  *http.Server
	Manager *usecase.LeagueManagerService

	logger *logging.Logger
	db     *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	ref, err := refdata.LoadFile(cfg.RefdataPath)
	if err != nil {
		logger.Warn("reference data override unusable, using embedded table", "path", cfg.RefdataPath, "error", err)
	}
	if ref.Degraded() {
		logger.Warn("reference data degraded, season fallbacks and round numbers unavailable")
	}

	leagues, err := league.NewTable(ref.LeagueConfigs())
	if err != nil {
		return nil, fmt.Errorf("build league table: %w", err)
	}

	gateway, breakers, err := buildGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	mapper := sportmonks.NewAdapter(logger)
	registry := usecase.NewProviderRegistry()
	if err := registry.Register(mapper); err != nil {
		return nil, fmt.Errorf("register fixture mapper: %w", err)
	}

	matches, db, err := buildMatchRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	seasons := usecase.NewSeasonService(gateway, ref, logger)
	rounds := usecase.NewRoundsService(gateway, mapper, seasons, leagues, usecase.RoundsServiceConfig{}, logger)
	syncSvc := usecase.NewSyncService(gateway, mapper, rounds, matches, leagues, ref, logger).
		WithInterDateDelay(cfg.SyncInterDateDelay)
	manager := usecase.NewLeagueManagerService(syncSvc, gateway, mapper, matches, leagues, usecase.LeagueManagerConfig{
		RefreshPoolSize: cfg.RefreshPoolSize,
	}, logger)

	handler := httpapi.NewHandler(manager, syncSvc, rounds, seasons, registry, matches, breakers, gateway.Name(), logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	logger.Info("application wired",
		"fixture_source", gateway.Name(),
		"persistence", persistenceKind(cfg),
		"leagues", leagues.Len(),
		"refdata_version", ref.Version(),
	)

	return &App{
		Config:  cfg,
		Server:  server,
		Manager: manager,
		logger:  logger,
		db:      db,
	}, nil
}

// RunScheduler drives periodic league refreshes until the context ends.
// It is a no-op when the scheduler is disabled.
func (a *App) RunScheduler(ctx context.Context) {
	if !a.Config.SchedulerEnabled {
		a.logger.Info("league refresh scheduler disabled")
		return
	}
	a.Manager.RunScheduler(ctx, a.Config.SchedulerInterval)
}

// Close releases resources held by the app. The HTTP server is shut down
// separately by the caller.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func buildGateway(cfg config.Config, logger *logging.Logger) (usecase.ProviderGateway, httpapi.BreakerReporter, error) {
	switch cfg.FixtureSource {
	case config.SourceSportMonks:
		client := sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:     cfg.SportMonksBaseURL,
			Token:       cfg.SportMonksToken,
			Timeout:     cfg.SportMonksTimeout,
			MaxRetries:  cfg.SportMonksMaxRetries,
			ResponseTTL: cfg.SportMonksResponseTTL,
			Logger:      logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:        cfg.SportMonksCircuitEnabled,
				MinRequests:    cfg.SportMonksCircuitMinRequests,
				FailureRate:    cfg.SportMonksCircuitFailureRate,
				OpenTimeout:    cfg.SportMonksCircuitOpenTimeout,
				HalfOpenMaxReq: cfg.SportMonksCircuitHalfOpenReqs,
			},
		})
		return client, client, nil
	case config.SourceStatic:
		client, err := staticfix.New()
		if err != nil {
			return nil, nil, fmt.Errorf("load static fixture dataset: %w", err)
		}
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown fixture source %q", cfg.FixtureSource)
	}
}

func buildMatchRepository(cfg config.Config, logger *logging.Logger) (match.Repository, *sqlx.DB, error) {
	if !cfg.UseDatabase() {
		logger.Info("using in-memory match repository")
		return memory.NewMatchRepository(), nil, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("using postgres match repository", "db", dbNameFromURL(cfg.DBURL))
	return postgres.NewMatchRepository(db), db, nil
}

func persistenceKind(cfg config.Config) string {
	if cfg.UseDatabase() {
		return "postgres"
	}
	return "memory"
}
