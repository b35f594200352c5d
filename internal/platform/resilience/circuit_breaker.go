package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// StateChangeFunc observes breaker transitions. Invoked outside the breaker
// lock so observers may log without blocking callers.
type StateChangeFunc func(from, to CircuitState)

// CircuitBreaker trips when the failure rate over a rolling window of
// recorded outcomes reaches the configured threshold.
type CircuitBreaker struct {
	mu sync.Mutex

	windowSize     int
	minRequests    int
	failureRate    float64
	openTimeout    time.Duration
	halfOpenMaxReq int
	onStateChange  StateChangeFunc

	state            CircuitState
	window           []bool // true = failure
	windowPos        int
	windowFilled     int
	openedAt         time.Time
	halfOpenInFlight int
	now              func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)

	return &CircuitBreaker{
		windowSize:     cfg.WindowSize,
		minRequests:    cfg.MinRequests,
		failureRate:    cfg.FailureRate,
		openTimeout:    cfg.OpenTimeout,
		halfOpenMaxReq: cfg.HalfOpenMaxReq,
		onStateChange:  cfg.OnStateChange,
		state:          CircuitStateClosed,
		window:         make([]bool, cfg.WindowSize),
		now:            time.Now,
	}
}

// Allow reports whether a call may proceed. In the open state it fails fast
// until the cool-down elapses, then admits half-open trial calls.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()

	var transition *stateTransition
	now := b.now()
	if b.state == CircuitStateOpen {
		if now.Sub(b.openedAt) < b.openTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		transition = b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			b.mu.Unlock()
			b.notify(transition)
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	b.mu.Unlock()
	b.notify(transition)
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()

	var transition *stateTransition
	switch b.state {
	case CircuitStateClosed:
		b.push(false)
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		transition = b.toClosed()
	}

	b.mu.Unlock()
	b.notify(transition)
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()

	var transition *stateTransition
	switch b.state {
	case CircuitStateClosed:
		b.push(true)
		if b.tripped() {
			transition = b.toOpen()
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		transition = b.toOpen()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}

	b.mu.Unlock()
	b.notify(transition)
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) push(failure bool) {
	b.window[b.windowPos] = failure
	b.windowPos = (b.windowPos + 1) % b.windowSize
	if b.windowFilled < b.windowSize {
		b.windowFilled++
	}
}

func (b *CircuitBreaker) tripped() bool {
	if b.windowFilled < b.minRequests {
		return false
	}
	failures := 0
	for i := 0; i < b.windowFilled; i++ {
		if b.window[i] {
			failures++
		}
	}
	return float64(failures) >= b.failureRate*float64(b.windowFilled)
}

type stateTransition struct {
	from CircuitState
	to   CircuitState
}

func (b *CircuitBreaker) toClosed() *stateTransition {
	t := &stateTransition{from: b.state, to: CircuitStateClosed}
	b.state = CircuitStateClosed
	b.window = make([]bool, b.windowSize)
	b.windowPos = 0
	b.windowFilled = 0
	b.halfOpenInFlight = 0
	b.openedAt = time.Time{}
	return t
}

func (b *CircuitBreaker) toOpen() *stateTransition {
	t := &stateTransition{from: b.state, to: CircuitStateOpen}
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	return t
}

func (b *CircuitBreaker) toHalfOpen() *stateTransition {
	t := &stateTransition{from: b.state, to: CircuitStateHalfOpen}
	b.state = CircuitStateHalfOpen
	b.halfOpenInFlight = 0
	return t
}

func (b *CircuitBreaker) notify(t *stateTransition) {
	if t == nil || b.onStateChange == nil || t.from == t.to {
		return
	}
	b.onStateChange(t.from, t.to)
}
