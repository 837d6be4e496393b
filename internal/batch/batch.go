// Package batch runs the alignment engine across many pairs. Pairs are
// independent, so they are spread over a bounded pool of goroutines; each
// result is stored at its pair's index so output order always matches input
// order.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chaz8081/wer/internal/align"
	"github.com/chaz8081/wer/internal/metrics"
	"github.com/chaz8081/wer/internal/tokenize"
)

// sequentialBelow is the batch size under which pairs are aligned inline.
const sequentialBelow = 8

// Runner aligns batches of pairs. The zero value uses GOMAXPROCS workers.
type Runner struct {
	Workers int
}

func (r Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Align returns the full alignment of every pair, in input order.
func (r Runner) Align(ctx context.Context, pairs []tokenize.Pair) ([]align.Result, error) {
	return Map(ctx, r.workers(), len(pairs), func(ctx context.Context, i int) (align.Result, error) {
		p := pairs[i]
		start := time.Now()
		res, err := align.AlignContext(ctx, p.Reference, p.Hypothesis)
		if err != nil {
			return align.Result{}, fmt.Errorf("pair %d: %w", i, err)
		}
		observe(p, time.Since(start))
		return res, nil
	})
}

// Score returns the distance-only score of every pair, in input order.
func (r Runner) Score(ctx context.Context, pairs []tokenize.Pair) ([]align.Score, error) {
	return Map(ctx, r.workers(), len(pairs), func(ctx context.Context, i int) (align.Score, error) {
		if err := ctx.Err(); err != nil {
			return align.Score{}, fmt.Errorf("pair %d: %w", i, err)
		}
		p := pairs[i]
		start := time.Now()
		s := align.ScoreOf(p.Reference, p.Hypothesis)
		observe(p, time.Since(start))
		return s, nil
	})
}

// Map calls fn for every index in [0, n) using at most workers goroutines
// and returns the results indexed like the input. The first error cancels
// the remaining work.
func Map[T any](ctx context.Context, workers, n int, fn func(context.Context, int) (T, error)) ([]T, error) {
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	metrics.BatchSize.Observe(float64(n))

	if workers <= 1 || n < sequentialBelow {
		for i := 0; i < n; i++ {
			v, err := fn(ctx, i)
			if err != nil {
				return nil, fmt.Errorf("batch: %w", err)
			}
			out[i] = v
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	return out, nil
}

func observe(p tokenize.Pair, elapsed time.Duration) {
	metrics.PairsAligned.Inc()
	metrics.AlignCells.Add(float64((len(p.Reference) + 1) * (len(p.Hypothesis) + 1)))
	metrics.AlignDuration.Observe(elapsed.Seconds())
}
