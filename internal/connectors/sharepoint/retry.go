package sharepoint

import (
	"context"
	"math/rand"
	"time"
)

const (
	// DefaultMaxAttempts is the default retry budget for remote calls.
	DefaultMaxAttempts = 3

	// retryBase is the unit of exponential backoff between attempts.
	retryBase = time.Second
)

// Retry runs op up to maxAttempts times, sleeping 2^attempt seconds plus up
// to one second of jitter between attempts. isRetryable decides whether a
// failure is worth another attempt; nil means IsTransient. Non-retryable
// errors propagate unchanged.
//
// Retry keeps no state and is reentrant: a retried operation may itself wrap
// sub-calls in Retry.
func Retry(ctx context.Context, maxAttempts int, isRetryable func(error) bool, op func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if isRetryable == nil {
		isRetryable = IsTransient
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxAttempts-1 || !isRetryable(err) {
			return err
		}
		if sleepErr := sleepBackoff(ctx, attempt+1); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// sleepBackoff waits 2^attempts seconds plus jitter, or until the context is
// canceled. attempts is the number of attempts completed so far, so the first
// wait is two seconds.
func sleepBackoff(ctx context.Context, attempts int) error {
	delay := retryBase<<uint(attempts) + time.Duration(rand.Int63n(int64(time.Second)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
