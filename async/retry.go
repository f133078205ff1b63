// Package async provides the small scheduling primitives the exporter runs
// on: retry with optional backoff, a rate-limited concurrent batch runner,
// and a strictly sequential runner.
package async

import (
	"context"
	"time"
)

// DefaultMaxTries is the attempt budget used when RetryOptions.MaxTries is unset.
const DefaultMaxTries = 5

// RetryOptions configures WithRetry.
type RetryOptions struct {
	// MaxTries is the total number of attempts, first call included.
	// Zero or negative means DefaultMaxTries.
	MaxTries int
	// Delay is an optional pause between attempts.
	Delay time.Duration
}

// WithRetry invokes op until it succeeds or the attempt budget is exhausted.
// The last error is returned unchanged so callers can still inspect it with
// errors.Is/As.
func WithRetry[T any](ctx context.Context, opts RetryOptions, op func(context.Context) (T, error)) (T, error) {
	tries := opts.MaxTries
	if tries <= 0 {
		tries = DefaultMaxTries
	}
	var zero T
	for {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		tries--
		if tries < 1 {
			return zero, err
		}
		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		} else if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
}
