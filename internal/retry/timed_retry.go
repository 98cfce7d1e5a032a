// Package retry provides a bounded, fixed-interval polling helper used while
// waiting for external key providers to become usable.
package retry

import (
	"context"
	"time"
)

// Clock supplies the current time and a way to wait. Sleep may return an error when
// interrupted; TimedRetry ignores it and keeps polling until the deadline.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration) error
}

type systemClock struct {
	ctx context.Context
}

// NewSystemClock returns a Clock backed by the wall clock. Cancelling ctx interrupts
// a pending Sleep.
func NewSystemClock(ctx context.Context) Clock {
	return &systemClock{ctx: ctx}
}

func (c *systemClock) Now() time.Time {
	return time.Now()
}

func (c *systemClock) Sleep(d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Interval is the fixed wait between two evaluations of the predicate.
const Interval = time.Second

// TimedRetry evaluates a predicate once per Interval until it succeeds or a deadline passes.
type TimedRetry struct {
	clock Clock
}

// NewTimedRetry creates a TimedRetry driven by clock.
func NewTimedRetry(clock Clock) *TimedRetry {
	return &TimedRetry{clock: clock}
}

// RetryEverySecondUntil evaluates fn immediately and returns true on the first success
// without sleeping. Otherwise it sleeps one Interval and evaluates again until at least
// durationSeconds have elapsed since the call started, then returns false. fn is always
// evaluated at least once, even for a zero or negative duration.
func (r *TimedRetry) RetryEverySecondUntil(durationSeconds int64, fn func() bool) bool {
	deadline := r.clock.Now().Add(time.Duration(durationSeconds) * time.Second)

	for {
		if fn() {
			return true
		}

		_ = r.clock.Sleep(Interval)

		if !r.clock.Now().Before(deadline) {
			return false
		}
	}
}
