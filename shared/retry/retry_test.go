package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock fires immediately and records how often it was consulted.
type fakeClock struct {
	waits int
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.waits++
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func TestAwaitUntil(t *testing.T) {
	t.Run("returns Found once the predicate succeeds", func(t *testing.T) {
		clock := &fakeClock{}
		calls := 0

		result, err := AwaitUntil(context.Background(), clock, func(context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		}, 5, time.Second)

		require.NoError(t, err)
		assert.Equal(t, Found, result)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 2, clock.waits)
	})

	t.Run("returns Timeout after exhausting attempts", func(t *testing.T) {
		clock := &fakeClock{}
		calls := 0

		result, err := AwaitUntil(context.Background(), clock, func(context.Context) (bool, error) {
			calls++
			return false, nil
		}, 4, time.Second)

		require.NoError(t, err)
		assert.Equal(t, Timeout, result)
		assert.Equal(t, 4, calls)
		// No wait after the final attempt.
		assert.Equal(t, 3, clock.waits)
	})

	t.Run("returns Canceled when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		blocked := blockingClock{}

		done := make(chan struct{})
		var result Result
		var err error
		go func() {
			result, err = AwaitUntil(ctx, blocked, func(context.Context) (bool, error) {
				return false, nil
			}, 5, time.Second)
			close(done)
		}()

		cancel()
		<-done

		assert.Equal(t, Canceled, result)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("a predicate error aborts the wait", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := AwaitUntil(context.Background(), &fakeClock{}, func(context.Context) (bool, error) {
			return false, boom
		}, 5, time.Second)

		assert.ErrorIs(t, err, boom)
	})
}

// blockingClock never fires, forcing AwaitUntil to observe the context.
type blockingClock struct{}

func (blockingClock) After(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}
