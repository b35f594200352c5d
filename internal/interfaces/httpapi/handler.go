package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/sportsdock/fixture-sync/internal/domain/match"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

// BreakerReporter exposes the per-operation circuit breaker states of the
// live provider client. The static source has no breakers and passes nil.
type BreakerReporter interface {
	BreakerStates() map[string]string
}

type Handler struct {
	manager  *usecase.LeagueManagerService
	sync     *usecase.SyncService
	rounds   *usecase.RoundsService
	seasons  *usecase.SeasonService
	registry *usecase.ProviderRegistry
	matches  match.Repository
	breakers BreakerReporter

	providerName string
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(
	manager *usecase.LeagueManagerService,
	syncService *usecase.SyncService,
	roundsService *usecase.RoundsService,
	seasonService *usecase.SeasonService,
	registry *usecase.ProviderRegistry,
	matches match.Repository,
	breakers BreakerReporter,
	providerName string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		manager:      manager,
		sync:         syncService,
		rounds:       roundsService,
		seasons:      seasonService,
		registry:     registry,
		matches:      matches,
		breakers:     breakers,
		providerName: providerName,
		logger:       logger,
		validator:    validator.New(),
	}
}
