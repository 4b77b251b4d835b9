package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Do while the breaker is refusing calls.
var ErrCircuitOpen = errors.New("circuit open: upstream unavailable")

// BreakerState is the circuit breaker's position in its lifecycle.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// CircuitBreaker fails fast after repeated upstream failures and periodically
// probes for recovery. One instance guards one upstream dependency and is
// safe for concurrent use.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	windowSize       time.Duration

	mu            sync.Mutex
	state         BreakerState
	failures      int
	lastFailure   time.Time
	nextAttempt   time.Time
	trialInFlight bool

	now func() time.Time
}

// NewCircuitBreaker returns a closed breaker. failureThreshold consecutive
// failures within windowSize open it; after resetTimeout one trial call is
// allowed through.
func NewCircuitBreaker(failureThreshold int, resetTimeout, windowSize time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		windowSize:       windowSize,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// State returns the breaker's current state, advancing OPEN to HALF_OPEN if
// the reset timeout has elapsed.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == BreakerOpen && !cb.now().Before(cb.nextAttempt) {
		return BreakerHalfOpen
	}
	return cb.state
}

// Do runs op under the breaker's supervision. While open it returns
// ErrCircuitOpen without invoking op; in half-open exactly one trial call is
// admitted and its result decides the next state.
func (cb *CircuitBreaker) Do(op func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := op()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerOpen:
		if cb.now().Before(cb.nextAttempt) {
			return ErrCircuitOpen
		}
		cb.state = BreakerHalfOpen
		cb.trialInFlight = true
		return nil
	case BreakerHalfOpen:
		if cb.trialInFlight {
			return ErrCircuitOpen
		}
		cb.trialInFlight = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()

	if err == nil {
		cb.state = BreakerClosed
		cb.failures = 0
		cb.trialInFlight = false
		return
	}

	if cb.state == BreakerHalfOpen {
		// Trial call failed: back to open for a fresh reset timeout.
		cb.state = BreakerOpen
		cb.nextAttempt = now.Add(cb.resetTimeout)
		cb.trialInFlight = false
		return
	}

	// Closed: stale failures outside the window don't accumulate.
	if cb.windowSize > 0 && !cb.lastFailure.IsZero() && now.Sub(cb.lastFailure) > cb.windowSize {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now

	if cb.failures >= cb.failureThreshold {
		cb.state = BreakerOpen
		cb.nextAttempt = now.Add(cb.resetTimeout)
	}
}
