package resilience

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker is refusing calls.
var ErrCircuitOpen = errors.New("resilience: circuit open")

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker shields a statement source from hammering while it is down.
// After FailureThreshold consecutive failures the breaker opens; once
// ResetTimeout elapses a single probe call is let through, and success
// closes the breaker again.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration

	mu            sync.Mutex
	state         CircuitState
	failures      int
	lastFailure   time.Time
	probeInFlight bool
}

func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            CircuitClosed,
	}
}

// Execute runs op if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Execute(op func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}
	err := op()
	cb.record(err)
	return err
}

// ExecuteVal is Execute for operations that produce a value.
func ExecuteVal[T any](cb *CircuitBreaker, op func() (T, error)) (T, error) {
	var zero T
	if err := cb.allow(); err != nil {
		return zero, err
	}
	v, err := op()
	cb.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if time.Since(cb.lastFailure) >= cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.probeInFlight = true
			zap.L().Info("circuit half-open, probing", zap.String("circuit", cb.name))
			return nil
		}
		return ErrCircuitOpen
	case CircuitHalfOpen:
		if cb.probeInFlight {
			return ErrCircuitOpen
		}
		cb.probeInFlight = true
		return nil
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state != CircuitClosed {
			zap.L().Info("circuit closed", zap.String("circuit", cb.name))
		}
		cb.state = CircuitClosed
		cb.failures = 0
		cb.probeInFlight = false
		return
	}

	cb.failures++
	cb.lastFailure = time.Now()
	cb.probeInFlight = false

	if cb.state == CircuitHalfOpen || cb.failures >= cb.failureThreshold {
		if cb.state != CircuitOpen {
			zap.L().Warn("circuit opened",
				zap.String("circuit", cb.name),
				zap.Int("consecutive_failures", cb.failures))
		}
		cb.state = CircuitOpen
	}
}

// State reports the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker closed. Intended for tests and admin tooling.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = CircuitClosed
	cb.failures = 0
	cb.probeInFlight = false
}
