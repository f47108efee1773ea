package search

import (
	"context"

	"hypertune/internal/strategy"
)

// Build grows history to targetN entries by repeatedly requesting a batch
// of candidates from the strategy and dispatching it. It only ever
// appends: existing entries are never mutated, reordered, or dropped. The
// loop is strictly sequential across batches because batch size and
// adaptive proposals depend on the history appended so far.
func Build(ctx context.Context, history strategy.History, targetN int, spec BuildSpec) (strategy.History, error) {
	for len(history) < targetN {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		remaining := targetN - len(history)

		batch, err := spec.Strategy.ProposeBatch(spec.State, history, remaining, spec.Verbosity)
		if err != nil {
			return history, err
		}
		exhausted := len(batch) < remaining
		if len(batch) == 0 {
			if spec.Verbosity >= 1 {
				spec.logger().Info("candidate supply exhausted",
					"history", len(history), "target", targetN)
			}
			return history, nil
		}
		if len(batch) > remaining {
			batch = batch[:remaining]
		}

		records, err := Dispatch(ctx, batch, spec, history)
		if err != nil {
			return history, err
		}
		history = append(history, records...)

		if exhausted {
			if len(history) < targetN && spec.Verbosity >= 1 {
				spec.logger().Info("candidate supply exhausted",
					"history", len(history), "target", targetN)
			}
			return history, nil
		}
	}
	return history, nil
}
