package search

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"hypertune/internal/model"
	"hypertune/internal/strategy"
)

// Dispatch evaluates one batch of candidates under the configured
// acceleration policy. The returned records always match the input order,
// regardless of completion order.
func Dispatch(ctx context.Context, batch []strategy.Candidate, spec BuildSpec, history strategy.History) ([]strategy.Record, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	switch spec.Accel.Kind {
	case model.AccelSpawn:
		return dispatchSpawn(ctx, batch, spec, history)
	case model.AccelPool:
		workers := spec.Accel.Workers
		if workers > len(batch) {
			workers = len(batch)
		}
		if workers <= 1 {
			return dispatchSequential(ctx, batch, spec, history)
		}
		return dispatchPool(ctx, batch, spec, history, workers)
	default:
		return dispatchSequential(ctx, batch, spec, history)
	}
}

func dispatchSequential(ctx context.Context, batch []strategy.Candidate, spec BuildSpec, history strategy.History) ([]strategy.Record, error) {
	ev := spec.Pool.Template()
	out := make([]strategy.Record, len(batch))
	for i, cand := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, result, err := runEvent(ctx, cand, ev, spec, history)
		if err != nil {
			return nil, err
		}
		out[i] = strategy.Record{Model: m, Result: result}
		if spec.Verbosity >= 1 {
			spec.logger().Info("batch progress", "done", i+1, "total", len(batch))
		}
	}
	return out, nil
}

// dispatchSpawn sends every event to its own goroutine with a private
// evaluator clone. Results are written by index so return order is the
// submission order.
func dispatchSpawn(ctx context.Context, batch []strategy.Candidate, spec BuildSpec, history strategy.History) ([]strategy.Record, error) {
	out := make([]strategy.Record, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	for i, cand := range batch {
		g.Go(func() error {
			ev := spec.Pool.Spawn()
			m, result, err := runEvent(gctx, cand, ev, spec, history)
			if err != nil {
				return err
			}
			out[i] = strategy.Record{Model: m, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// dispatchPool splits the batch index range into contiguous partitions,
// one per worker. Each worker writes into disjoint slots of the shared
// output slice; only the progress counter needs a lock.
func dispatchPool(ctx context.Context, batch []strategy.Candidate, spec BuildSpec, history strategy.History, workers int) ([]strategy.Record, error) {
	out := make([]strategy.Record, len(batch))

	var progressMu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * len(batch) / workers
		end := (w + 1) * len(batch) / workers
		if start == end {
			continue
		}
		ev := spec.Pool.Worker(w)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, result, err := runEvent(gctx, batch[i], ev, spec, history)
				if err != nil {
					return err
				}
				out[i] = strategy.Record{Model: m, Result: result}
				if spec.Verbosity >= 1 {
					progressMu.Lock()
					done++
					current := done
					progressMu.Unlock()
					spec.logger().Info("batch progress", "done", current, "total", len(batch))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
