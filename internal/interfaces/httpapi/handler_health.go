package httpapi

import (
	"net/http"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type providerHealthDTO struct {
	Provider  string `json:"provider"`
	Active    bool   `json:"active"`
	Available bool   `json:"available"`
}

type providersHealthDTO struct {
	Source   string              `json:"source"`
	Adapters []providerHealthDTO `json:"adapters"`
	Breakers map[string]string   `json:"breakers,omitempty"`
}

func (h *Handler) ProvidersHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProvidersHealth")
	defer span.End()

	health := h.registry.Health()
	adapters := make([]providerHealthDTO, 0, len(health))
	for _, entry := range health {
		adapters = append(adapters, providerHealthDTO{
			Provider:  entry.Provider,
			Active:    entry.Active,
			Available: entry.Available,
		})
	}

	payload := providersHealthDTO{
		Source:   h.providerName,
		Adapters: adapters,
	}
	if h.breakers != nil {
		payload.Breakers = h.breakers.BreakerStates()
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}
