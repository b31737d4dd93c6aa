// Package resilience provides the circuit breaker pattern used to gate
// retryable I/O elsewhere in the module, such as a representation's
// simulated manifest refresh in internal/m3u8rep.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is the state of a CircuitBreaker.
type State int

const (
	// StateClosed means calls are allowed through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected until resetTimeout elapses.
	StateOpen
	// StateHalfOpen means resetTimeout has elapsed and calls are let through
	// again on trial: a success closes the breaker, and failures count from
	// zero toward failureThreshold before it opens again.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Call when the breaker is open.
var ErrOpen = errors.New("resilience: circuit breaker is open")

// CircuitBreaker trips open after failureThreshold consecutive failures and
// stays open for resetTimeout before allowing a half-open trial call.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu              sync.Mutex
	state           State
	failures        int
	lastFailureTime time.Time
}

// New creates a circuit breaker with the given failure threshold and reset
// timeout.
func New(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            StateClosed,
	}
}

// Call runs fn if the breaker allows it, recording the outcome.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return ErrOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailureLocked()
		return err
	}
	cb.recordSuccessLocked()
	return nil
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return true
	}
	if time.Since(cb.lastFailureTime) < cb.resetTimeout {
		return false
	}
	cb.state = StateHalfOpen
	cb.failures = 0
	return true
}

func (cb *CircuitBreaker) recordSuccessLocked() {
	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
	}
}

func (cb *CircuitBreaker) recordFailureLocked() {
	cb.failures++
	cb.lastFailureTime = time.Now()
	if cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
	}
}

// RecordSuccess records a success observed outside of Call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.recordSuccessLocked()
}

// RecordFailure records a failure observed outside of Call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.recordFailureLocked()
}

// State reports the breaker's current state, auto-transitioning Open to
// HalfOpen once resetTimeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && time.Since(cb.lastFailureTime) >= cb.resetTimeout {
		cb.state = StateHalfOpen
		cb.failures = 0
	}
	return cb.state
}

// Open reports whether the breaker is currently blocking calls.
func (cb *CircuitBreaker) Open() bool {
	return cb.State() == StateOpen
}

// Reset restores the breaker to its initial closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.lastFailureTime = time.Time{}
}
