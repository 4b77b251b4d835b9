package resilience

import (
	"context"
	"time"
)

// RetryConfig defines the backoff policy for WithRetry.
type RetryConfig struct {
	// MaxAttempts is the total number of invocations, not the number of
	// retries. Values below 1 are treated as 1.
	MaxAttempts int

	// InitialDelay is the sleep before the first retry; each subsequent
	// delay is multiplied by BackoffMultiplier and capped at MaxDelay.
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration

	// ShouldRetry decides whether a failure is worth another attempt.
	// Nil retries every error.
	ShouldRetry func(err error) bool

	// OnRetry is an observation hook invoked before each sleep. It has no
	// influence on control flow.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// WithRetry invokes op up to cfg.MaxAttempts times with exponential backoff.
// The error from the final attempt is returned unchanged; a ShouldRetry veto
// likewise returns the triggering error as-is.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := cfg.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	var zero T
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			break
		}

		sleep := delay
		if cfg.MaxDelay > 0 && sleep > cfg.MaxDelay {
			sleep = cfg.MaxDelay
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, sleep)
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}

		delay = time.Duration(float64(delay) * multiplier)
	}

	return zero, lastErr
}

// WithTimeoutAndRetry composes WithTimeout and WithRetry. Timeouts are not
// retried unless the caller's ShouldRetry explicitly opts in; retrying a
// consistently slow upstream only multiplies the load on it.
func WithTimeoutAndRetry[T any](ctx context.Context, budget time.Duration, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, error) {
	callerPredicate := cfg.ShouldRetry
	cfg.ShouldRetry = func(err error) bool {
		if callerPredicate != nil {
			return callerPredicate(err)
		}
		return !IsTimeout(err)
	}
	return WithRetry(ctx, cfg, func(ctx context.Context) (T, error) {
		return WithTimeout(ctx, budget, op)
	})
}
