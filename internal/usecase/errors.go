package usecase

import "errors"

// Sentinel errors for the sync pipeline. Callers branch with errors.Is; the
// wrapped message carries the provider detail.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTransport covers network-level failures reaching the provider.
	ErrTransport = errors.New("provider transport failure")
	// ErrProvider covers non-success responses from the provider.
	ErrProvider = errors.New("provider request rejected")
	// ErrCircuitOpen is returned without touching the network while the
	// provider breaker is open.
	ErrCircuitOpen = errors.New("provider circuit open")
	// ErrSeasonNotFound means every season resolution strategy failed.
	ErrSeasonNotFound = errors.New("current season not found")
	// ErrRoundResolution means the stage or round window could not be
	// resolved; sync falls back to day-based loading.
	ErrRoundResolution = errors.New("round window resolution failed")
	// ErrMapping marks a provider payload that could not be normalized.
	ErrMapping = errors.New("fixture mapping failed")
)
