// Package resilience implements the three-state circuit breaker used by
// the external ingress chain.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is one of Closed, Open, HalfOpen.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config configures the breaker's thresholds.
type Config struct {
	FailureThreshold int           // consecutive 5xx before Closed -> Open
	SuccessThreshold int           // consecutive non-5xx before HalfOpen -> Closed
	Timeout          time.Duration // time in Open before trying HalfOpen
	OnStateChange    func(from, to State)
}

// DefaultConfig returns the baseline thresholds: 5 consecutive failures to
// trip, 2 consecutive successes in half-open to close, 60s open timeout.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          60 * time.Second,
	}
}

// CircuitBreaker is a mutex-guarded tri-state breaker. A request is
// classified as a "failure" by the caller (a downstream 5xx), not by
// transport errors alone.
type CircuitBreaker struct {
	mu          sync.RWMutex
	config      Config
	state       State
	failures    int
	successes   int
	halfOpenUse bool
	lastTrip    time.Time
}

func New(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &CircuitBreaker{config: cfg, state: StateClosed}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Allow reports whether a new request may proceed, transitioning
// Open -> HalfOpen when the timeout has elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.lastTrip) >= cb.config.Timeout {
			cb.setState(StateHalfOpen)
			cb.halfOpenUse = true
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenUse {
			return ErrTooManyRequests
		}
		cb.halfOpenUse = true
		return nil
	}
	return nil
}

// RecordFailure reports a downstream 5xx (or equivalent) response.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastTrip = time.Now()
	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateOpen)
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	}
}

// RecordSuccess reports a non-5xx response.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		} else {
			// The probe finished; let the next one through.
			cb.halfOpenUse = false
		}
	case StateClosed:
		cb.failures = 0
	}
}

// setState must be called with cb.mu held.
func (cb *CircuitBreaker) setState(newState State) {
	if cb.state == newState {
		return
	}
	old := cb.state
	cb.state = newState
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenUse = false

	if cb.config.OnStateChange != nil {
		go cb.config.OnStateChange(old, newState)
	}
}
