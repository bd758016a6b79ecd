// Package infra provides resilience primitives for the provider HTTP client.
package infra

import (
	"fmt"
	"sync"
	"time"
)

// CircuitBreaker fails fast when the provider is unresponsive. It counts
// consecutive failures and opens after a threshold is reached. An open breaker
// rejects calls until resetTimeout has passed, then lets a bounded number of
// probe calls through (half-open).
type CircuitBreaker struct {
	mu sync.Mutex

	name             string
	failureThreshold int           // consecutive failures before opening; <= 0 disables the breaker
	resetTimeout     time.Duration // wait before probing again
	halfOpenMax      int           // probe calls allowed while half-open

	state            CircuitState
	consecutiveFails int
	lastFailure      time.Time
	halfOpenCount    int
	halfOpenSince    time.Time

	onStateChange func(name string, from, to CircuitState)
}

// CircuitState represents the current state of the circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Failing fast
	CircuitHalfOpen                     // Probing for recovery
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

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int
	ResetTimeout     time.Duration
	HalfOpenMax      int

	// OnStateChange is called with the breaker lock released.
	OnStateChange func(name string, from, to CircuitState)
}

// DefaultBreakerConfig returns the defaults used for the provider client.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMax:      2,
	}
}

// NewCircuitBreaker creates a circuit breaker from cfg. Zero HalfOpenMax or
// ResetTimeout fall back to the defaults.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	def := DefaultBreakerConfig(cfg.Name)
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = def.ResetTimeout
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = def.HalfOpenMax
	}
	return &CircuitBreaker{
		name:             cfg.Name,
		failureThreshold: cfg.FailureThreshold,
		resetTimeout:     cfg.ResetTimeout,
		halfOpenMax:      cfg.HalfOpenMax,
		state:            CircuitClosed,
		onStateChange:    cfg.OnStateChange,
	}
}

// Enabled reports whether the breaker ever opens.
func (cb *CircuitBreaker) Enabled() bool {
	return cb.failureThreshold > 0
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() bool {
	if !cb.Enabled() {
		return true
	}

	cb.mu.Lock()
	from := cb.state
	allowed := false

	switch cb.state {
	case CircuitClosed:
		allowed = true
	case CircuitOpen:
		if time.Since(cb.lastFailure) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenCount = 0
			cb.halfOpenSince = time.Now()
			allowed = true
		}
	case CircuitHalfOpen:
		switch {
		case cb.halfOpenCount < cb.halfOpenMax:
			cb.halfOpenCount++
			allowed = true
		case time.Since(cb.halfOpenSince) > cb.resetTimeout:
			// probes that never reported back no longer hold their slots
			cb.halfOpenCount = 1
			cb.halfOpenSince = time.Now()
			allowed = true
		}
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return allowed
}

// Release returns a half-open probe slot for a call that ended without
// reaching the provider, such as one cancelled by its caller.
func (cb *CircuitBreaker) Release() {
	if !cb.Enabled() {
		return
	}

	cb.mu.Lock()
	if cb.state == CircuitHalfOpen && cb.halfOpenCount > 0 {
		cb.halfOpenCount--
	}
	cb.mu.Unlock()
}

// RecordSuccess resets the failure count and closes a half-open circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state
	cb.consecutiveFails = 0
	if cb.state == CircuitHalfOpen {
		cb.state = CircuitClosed
		cb.halfOpenCount = 0
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// RecordFailure counts a failure, opening the circuit at the threshold or
// immediately when half-open.
func (cb *CircuitBreaker) RecordFailure() {
	if !cb.Enabled() {
		return
	}

	cb.mu.Lock()
	from := cb.state
	cb.consecutiveFails++
	cb.lastFailure = time.Now()

	switch cb.state {
	case CircuitClosed:
		if cb.consecutiveFails >= cb.failureThreshold {
			cb.state = CircuitOpen
		}
	case CircuitHalfOpen:
		cb.state = CircuitOpen
		cb.halfOpenCount = 0
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns circuit breaker statistics
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStats{
		Name:             cb.name,
		State:            cb.state.String(),
		ConsecutiveFails: cb.consecutiveFails,
		LastFailure:      cb.lastFailure,
	}
}

// Err returns an ErrCircuitOpen describing the current state.
func (cb *CircuitBreaker) Err() *ErrCircuitOpen {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return &ErrCircuitOpen{
		Name:     cb.name,
		State:    cb.state.String(),
		RetryAt:  cb.lastFailure.Add(cb.resetTimeout),
		Failures: cb.consecutiveFails,
	}
}

func (cb *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// CircuitBreakerStats contains circuit breaker statistics
type CircuitBreakerStats struct {
	Name             string    `json:"name"`
	State            string    `json:"state"`
	ConsecutiveFails int       `json:"consecutive_failures"`
	LastFailure      time.Time `json:"last_failure,omitempty"`
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
type ErrCircuitOpen struct {
	Name     string
	State    string
	RetryAt  time.Time
	Failures int
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("%s is unavailable (circuit breaker %s after %d consecutive failures), retry after %s",
		e.Name, e.State, e.Failures, e.RetryAt.Format(time.RFC3339))
}
