package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	now      time.Time
	sleeps   []time.Duration
	sleepErr error
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Sleep(d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return f.sleepErr
}

func TestTimedRetry_RetryEverySecondUntil(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success_ImmediateWithoutSleeping", func(t *testing.T) {
		clock := &fakeClock{now: start}
		calls := 0

		ok := NewTimedRetry(clock).RetryEverySecondUntil(10, func() bool {
			calls++
			return true
		})

		assert.True(t, ok)
		assert.Equal(t, 1, calls)
		assert.Empty(t, clock.sleeps)
	})

	t.Run("Success_AfterSeveralAttempts", func(t *testing.T) {
		clock := &fakeClock{now: start}
		calls := 0

		ok := NewTimedRetry(clock).RetryEverySecondUntil(10, func() bool {
			calls++
			return calls == 3
		})

		assert.True(t, ok)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)
	})

	t.Run("Error_DeadlineReached", func(t *testing.T) {
		clock := &fakeClock{now: start}
		calls := 0

		ok := NewTimedRetry(clock).RetryEverySecondUntil(5, func() bool {
			calls++
			return false
		})

		assert.False(t, ok)
		assert.Equal(t, 5, calls)
		assert.Len(t, clock.sleeps, 5)
		assert.Equal(t, start.Add(5*time.Second), clock.now)
	})

	t.Run("Error_ZeroDurationEvaluatesOnce", func(t *testing.T) {
		clock := &fakeClock{now: start}
		calls := 0

		ok := NewTimedRetry(clock).RetryEverySecondUntil(0, func() bool {
			calls++
			return false
		})

		assert.False(t, ok)
		assert.Equal(t, 1, calls)
	})

	t.Run("Success_InterruptedSleepIsIgnored", func(t *testing.T) {
		clock := &fakeClock{now: start, sleepErr: errors.New("interrupted")}
		calls := 0

		ok := NewTimedRetry(clock).RetryEverySecondUntil(10, func() bool {
			calls++
			return calls == 4
		})

		assert.True(t, ok)
		assert.Equal(t, 4, calls)
	})
}

func TestSystemClock_Sleep(t *testing.T) {
	t.Run("Success_Elapses", func(t *testing.T) {
		clock := NewSystemClock(context.Background())
		before := clock.Now()

		assert.NoError(t, clock.Sleep(5*time.Millisecond))
		assert.GreaterOrEqual(t, clock.Now().Sub(before), 5*time.Millisecond)
	})

	t.Run("Error_CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewSystemClock(ctx).Sleep(time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
