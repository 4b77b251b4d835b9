// Package resilience provides the timeout, retry, and circuit-breaker
// primitives used around every upstream call in the ingestion pipeline.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that an operation exceeded its budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation timed out after %s", e.Budget)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// WithTimeout races op against the budget. On timeout the operation keeps
// running in its own goroutine and its eventual result is discarded; the
// context handed to op is cancelled so well-behaved operations stop early.
func WithTimeout[T any](ctx context.Context, budget time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the goroutine never leaks waiting on a reader.
	done := make(chan outcome, 1)
	go func() {
		v, err := op(opCtx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var zero T
	select {
	case out := <-done:
		return out.value, out.err
	case <-timer.C:
		return zero, &TimeoutError{Budget: budget}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
