package async

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Defaults match the request budget the vendor API has been observed to
// tolerate on a single credential.
const (
	DefaultRatePerInterval = 20
	DefaultInterval        = time.Second
	DefaultMaxConcurrency  = 6
)

// RunOptions configures Run.
type RunOptions struct {
	// RatePerInterval is the maximum number of operations started per Interval.
	RatePerInterval int
	// Interval is the pacing window for RatePerInterval.
	Interval time.Duration
	// MaxConcurrency is the maximum number of operations in flight at once.
	MaxConcurrency int
}

func (o RunOptions) withDefaults() RunOptions {
	if o.RatePerInterval <= 0 {
		o.RatePerInterval = DefaultRatePerInterval
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = DefaultMaxConcurrency
	}
	return o
}

// Run executes all operations, admitting at most RatePerInterval starts per
// Interval and keeping at most MaxConcurrency in flight. An operation blocked
// on the concurrency gate delays every later operation's start. Results are
// returned in input order. The first failure fails the whole batch; operations
// already in flight are left to finish but their results are discarded.
func Run[T any](ctx context.Context, opts RunOptions, ops []func(context.Context) (T, error)) ([]T, error) {
	opts = opts.withDefaults()

	results := make([]T, len(ops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrency)

	windowStart := time.Now()
	started := 0
	for i, op := range ops {
		if gctx.Err() != nil {
			break
		}
		if started == opts.RatePerInterval {
			wait := opts.Interval - time.Since(windowStart)
			if wait > 0 {
				select {
				case <-time.After(wait):
				case <-gctx.Done():
				}
			}
			windowStart = time.Now()
			started = 0
		}
		started++
		i, op := i, op
		g.Go(func() error {
			v, err := op(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunSequential executes operations strictly one at a time, in order, each
// fully resolving before the next starts.
func RunSequential[T any](ctx context.Context, ops []func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := op(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}
