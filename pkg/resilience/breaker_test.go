package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream failure")

func failingOp() error { return errUpstream }
func passingOp() error { return nil }

func newTestBreaker(threshold int, reset, window time.Duration) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker(threshold, reset, window)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute, time.Hour)

	for i := 0; i < 3; i++ {
		if err := cb.Do(failingOp); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d error = %v, want upstream error", i, err)
		}
	}
	if got := cb.State(); got != BreakerOpen {
		t.Fatalf("state after 3 failures = %s, want open", got)
	}

	invoked := false
	err := cb.Do(func() error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error while open = %v, want ErrCircuitOpen", err)
	}
	if invoked {
		t.Error("operation invoked while circuit open")
	}
}

func TestCircuitBreaker_HalfOpenTrialSuccessCloses(t *testing.T) {
	cb, now := newTestBreaker(2, time.Minute, time.Hour)
	_ = cb.Do(failingOp)
	_ = cb.Do(failingOp)

	*now = now.Add(61 * time.Second)
	if got := cb.State(); got != BreakerHalfOpen {
		t.Fatalf("state after reset timeout = %s, want half_open", got)
	}

	invoked := 0
	if err := cb.Do(func() error { invoked++; return nil }); err != nil {
		t.Fatalf("trial call error = %v", err)
	}
	if invoked != 1 {
		t.Errorf("trial invocations = %d, want exactly 1", invoked)
	}
	if got := cb.State(); got != BreakerClosed {
		t.Errorf("state after trial success = %s, want closed", got)
	}
}

func TestCircuitBreaker_HalfOpenTrialFailureReopens(t *testing.T) {
	cb, now := newTestBreaker(2, time.Minute, time.Hour)
	_ = cb.Do(failingOp)
	_ = cb.Do(failingOp)

	*now = now.Add(61 * time.Second)
	if err := cb.Do(failingOp); !errors.Is(err, errUpstream) {
		t.Fatalf("trial call error = %v, want upstream error", err)
	}
	if got := cb.State(); got != BreakerOpen {
		t.Fatalf("state after trial failure = %s, want open", got)
	}

	// A fresh reset timeout applies before the next trial.
	*now = now.Add(30 * time.Second)
	if err := cb.Do(passingOp); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error before fresh timeout = %v, want ErrCircuitOpen", err)
	}
	*now = now.Add(31 * time.Second)
	if err := cb.Do(passingOp); err != nil {
		t.Errorf("trial after fresh timeout error = %v", err)
	}
}

func TestCircuitBreaker_WindowResetsFailureCount(t *testing.T) {
	cb, now := newTestBreaker(3, time.Minute, 10*time.Second)

	_ = cb.Do(failingOp)
	_ = cb.Do(failingOp)

	// Failures go stale outside the window; the count starts over.
	*now = now.Add(11 * time.Second)
	_ = cb.Do(failingOp)
	_ = cb.Do(failingOp)
	if got := cb.State(); got != BreakerClosed {
		t.Fatalf("state = %s, want closed: stale failures must not count", got)
	}

	_ = cb.Do(failingOp)
	if got := cb.State(); got != BreakerOpen {
		t.Errorf("state = %s, want open after 3 in-window failures", got)
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute, time.Hour)
	_ = cb.Do(failingOp)
	_ = cb.Do(passingOp)
	_ = cb.Do(failingOp)
	if got := cb.State(); got != BreakerClosed {
		t.Errorf("state = %s, want closed: success resets the failure count", got)
	}
}
