// Package retry runs an operation under a bounded attempt policy with
// exponential backoff between attempts.
package retry

import (
	"context"
	"math"
	"time"
)

// Policy configures Do.
type Policy struct {
	// Attempts is the total number of attempts, including the first one.
	Attempts int

	// Delay returns how long to wait after the given failed attempt (1-based)
	// before starting the next one. Nil means no delay.
	Delay func(attempt int) time.Duration

	// Retryable reports whether err may be retried. Nil retries every error.
	Retryable func(err error) bool

	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep waits for d or until ctx is done. Defaults to a timer select.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Exponential returns a Delay of unit * 2^attempt, so a unit of one second
// waits 2s after the first attempt and 4s after the second.
func Exponential(unit time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return unit * time.Duration(math.Pow(2, float64(attempt)))
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The error of the last attempt is returned as is.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}

		var delay time.Duration
		if p.Delay != nil {
			delay = p.Delay(attempt)
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	_, err := Do(ctx, p, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, fn(ctx, attempt)
	})
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
