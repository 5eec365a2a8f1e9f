// Package batch fans work items out over a bounded worker pool, one
// fixed-size batch at a time, preserving input order in the results.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSize caps how many items one batch holds.
	DefaultSize = 50
	// DefaultWorkers bounds concurrent item processing inside a batch.
	DefaultWorkers = 4
)

// Result pairs one processed value with whether its item ever ran.
// Skipped items were abandoned because the context was canceled first.
type Result[R any] struct {
	Value   R
	Skipped bool
}

// Run processes items in batches of at most size, with at most workers
// items in flight at once. Results line up index-for-index with items.
// fn owns its own failure reporting through R; Run itself only stops for
// context cancellation, marking everything that never ran as skipped.
func Run[T, R any](ctx context.Context, items []T, size, workers int, fn func(context.Context, T) R) []Result[R] {
	if size <= 0 {
		size = DefaultSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result[R], len(items))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := start; i < end; i++ {
			i := i // per-iteration copy; required while go.mod targets go < 1.22
			g.Go(func() error {
				if gctx.Err() != nil {
					results[i].Skipped = true
					return nil
				}
				results[i].Value = fn(gctx, items[i])
				return nil
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			for i := end; i < len(items); i++ {
				results[i].Skipped = true
			}
			break
		}
	}
	return results
}
