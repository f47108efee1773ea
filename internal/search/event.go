package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hypertune/internal/learner"
	"hypertune/internal/model"
	"hypertune/internal/resample"
	"hypertune/internal/strategy"
)

// ErrEvaluation reports a failed resampling evaluation. The failure aborts
// the whole in-flight batch; there is no per-event retry.
var ErrEvaluation = errors.New("model evaluation failed")

// BuildSpec carries everything one search loop invocation needs.
type BuildSpec struct {
	Strategy  strategy.Strategy
	State     strategy.State
	Data      learner.Dataset
	Accel     model.Accel
	Pool      *Pool
	Logger    *slog.Logger
	Verbosity int
}

func (s BuildSpec) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// runEvent evaluates one candidate on the given evaluator: it overwrites
// the evaluator's model slot with the candidate configuration, runs the
// resampling evaluation, and converts the raw evaluation into a history
// result via the strategy.
func runEvent(
	ctx context.Context,
	cand strategy.Candidate,
	ev *resample.Evaluator,
	spec BuildSpec,
	history strategy.History,
) (learner.Learner, any, error) {
	ev.Model = cand.Model
	eval, err := ev.Evaluate(ctx, spec.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate %s: %v: %w", cand.Model.Name(), err, ErrEvaluation)
	}
	result, err := spec.Strategy.MakeResult(history, spec.State, eval, cand.Meta)
	if err != nil {
		return nil, nil, fmt.Errorf("make result: %w", err)
	}
	if spec.Verbosity >= 2 {
		spec.logger().Debug("evaluated candidate",
			"model", cand.Model.Name(),
			"params", cand.Model.Params(),
			"measures", eval.Measures,
			"values", eval.Values,
		)
	}
	return cand.Model, result, nil
}
