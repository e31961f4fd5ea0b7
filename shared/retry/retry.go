package retry

import (
	"context"
	"time"
)

// Clock abstracts time for bounded polling so callers can be tested without
// real sleeps.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock is the production Clock backed by the time package.
type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Result reports how an AwaitUntil call ended.
type Result int

const (
	Found Result = iota
	Timeout
	Canceled
)

// AwaitUntil polls predicate up to maxAttempts times, waiting interval between
// attempts. It returns Found as soon as the predicate reports true, Timeout
// once the attempts are exhausted, and Canceled if the context ends first.
// A predicate error aborts the wait.
func AwaitUntil(
	ctx context.Context,
	clock Clock,
	predicate func(ctx context.Context) (bool, error),
	maxAttempts int,
	interval time.Duration,
) (Result, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ok, err := predicate(ctx)
		if err != nil {
			return Timeout, err
		}
		if ok {
			return Found, nil
		}

		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return Canceled, ctx.Err()
		case <-clock.After(interval):
		}
	}

	return Timeout, nil
}
