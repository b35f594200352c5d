package usecase

import (
	"fmt"
	"sort"
	"sync"
)

// MapperHealth describes one registered adapter for the health surface.
// Every mapper carries the full mapping contract, so availability is the
// only per-adapter signal worth reporting.
type MapperHealth struct {
	Provider  string
	Active    bool
	Available bool
}

// ProviderRegistry tracks the fixture mappers known to the service and which
// provider is active. Registration is expected at startup; lookups are safe
// from any goroutine.
type ProviderRegistry struct {
	mu      sync.RWMutex
	mappers map[string]FixtureMapper
	active  string
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{mappers: make(map[string]FixtureMapper, 2)}
}

func (r *ProviderRegistry) Register(mapper FixtureMapper) error {
	if mapper == nil {
		return fmt.Errorf("%w: mapper is nil", ErrInvalidInput)
	}
	name := mapper.Provider()
	if name == "" {
		return fmt.Errorf("%w: mapper has no provider name", ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.mappers[name]; dup {
		return fmt.Errorf("%w: provider %q already registered", ErrInvalidInput, name)
	}
	r.mappers[name] = mapper
	if r.active == "" {
		r.active = name
	}
	return nil
}

// SetActive selects the default provider.
func (r *ProviderRegistry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mappers[name]; !ok {
		return fmt.Errorf("%w: provider %q not registered", ErrNotFound, name)
	}
	r.active = name
	return nil
}

// Active returns the mapper for the active provider.
func (r *ProviderRegistry) Active() (FixtureMapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mapper, ok := r.mappers[r.active]
	if !ok {
		return nil, fmt.Errorf("%w: no active provider", ErrNotFound)
	}
	return mapper, nil
}

// Get returns the mapper for a named provider.
func (r *ProviderRegistry) Get(name string) (FixtureMapper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mapper, ok := r.mappers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not registered", ErrNotFound, name)
	}
	return mapper, nil
}

// Health reports every registered adapter, sorted by provider name.
func (r *ProviderRegistry) Health() []MapperHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MapperHealth, 0, len(r.mappers))
	for name, mapper := range r.mappers {
		out = append(out, MapperHealth{
			Provider:  name,
			Active:    name == r.active,
			Available: mapper != nil,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}
