package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled        bool
	WindowSize     int
	MinRequests    int
	FailureRate    float64
	OpenTimeout    time.Duration
	HalfOpenMaxReq int
	OnStateChange  StateChangeFunc
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:        true,
		WindowSize:     10,
		MinRequests:    4,
		FailureRate:    0.5,
		OpenTimeout:    30 * time.Second,
		HalfOpenMaxReq: 1,
	}
}

func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.WindowSize < 1 {
		cfg.WindowSize = defaults.WindowSize
	}
	if cfg.MinRequests < 1 {
		cfg.MinRequests = defaults.MinRequests
	}
	if cfg.MinRequests > cfg.WindowSize {
		cfg.MinRequests = cfg.WindowSize
	}
	if cfg.FailureRate <= 0 || cfg.FailureRate > 1 {
		cfg.FailureRate = defaults.FailureRate
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
