package tuned

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hypertune/internal/learner"
	"hypertune/internal/measure"
	"hypertune/internal/model"
	"hypertune/internal/resample"
	"hypertune/internal/search"
	"hypertune/internal/strategy"
)

// ErrNotTrained reports a prediction request when train-best was disabled.
var ErrNotTrained = errors.New("best model was not trained; enable TrainBest")

// Spec is the full controller configuration. Iterations of 0 defers to the
// strategy's default budget.
type Spec struct {
	Learner    learner.Learner
	Strategy   strategy.Strategy
	Range      strategy.Range
	Resampling resample.Resampling
	Measures   []measure.Measure
	Weights    []float64
	Operation  string
	TrainBest  bool
	Repeats    int
	Iterations int
	Accel      model.Accel
	InnerAccel model.Accel
	Check      bool
	Seed       int64
	Logger     *slog.Logger
}

// Trained is the artifact a successful fit hands back. Fitted is nil when
// train-best was disabled.
type Trained struct {
	Best   learner.Learner
	Fitted learner.Fitted
}

// Predict delegates to the retrained best model.
func (t *Trained) Predict(ctx context.Context, x [][]float64) ([]float64, error) {
	if t == nil || t.Fitted == nil {
		return nil, ErrNotTrained
	}
	return t.Fitted.Predict(ctx, x)
}

// Params exposes the winning configuration and, when available, its
// learned parameters.
type Params struct {
	BestModel        learner.Learner
	BestFittedParams map[string]float64
}

// FittedParams reports the winning configuration; learned parameters are
// nil when train-best was disabled.
func (t *Trained) FittedParams() Params {
	if t == nil {
		return Params{}
	}
	out := Params{BestModel: t.Best}
	if t.Fitted != nil {
		out.BestFittedParams = t.Fitted.LearnedParams()
	}
	return out
}

// Report is the caller-facing outcome of one fit or update.
type Report struct {
	BestModel  learner.Learner
	BestResult any
	BestReport map[string]any
	Summary    map[string]any
	History    strategy.History
}

// MetaState is everything persisted between fit and update calls: the
// cumulative history, the configuration snapshot used for change
// detection, the strategy's private search state, and the evaluator pool.
type MetaState struct {
	History  strategy.History
	Target   int
	State    strategy.State
	Pool     *search.Pool
	snapshot snapshot
}

func validate(spec Spec) error {
	if spec.Learner == nil {
		return fmt.Errorf("no base model supplied: %w", strategy.ErrConfiguration)
	}
	if spec.Strategy == nil {
		return fmt.Errorf("no tuning strategy supplied: %w", strategy.ErrConfiguration)
	}
	if spec.Resampling == nil {
		return fmt.Errorf("no resampling strategy supplied: %w", strategy.ErrConfiguration)
	}
	if len(spec.Measures) == 0 {
		return fmt.Errorf("no measures supplied: %w", strategy.ErrConfiguration)
	}
	return nil
}

func resolveTarget(spec Spec) (int, error) {
	if spec.Iterations > 0 {
		return spec.Iterations, nil
	}
	n, bounded := spec.Strategy.DefaultIterations(spec.Range)
	if !bounded || n <= 0 {
		return 0, fmt.Errorf("strategy %s has no bounded default; set Iterations: %w",
			spec.Strategy.Name(), strategy.ErrConfiguration)
	}
	return n, nil
}

// Fit runs a fresh search: new strategy state, new evaluator pool, history
// built from empty.
func Fit(ctx context.Context, spec Spec, verbosity int, ds learner.Dataset) (*Trained, *MetaState, Report, error) {
	if err := validate(spec); err != nil {
		return nil, nil, Report{}, err
	}
	target, err := resolveTarget(spec)
	if err != nil {
		return nil, nil, Report{}, err
	}
	state, err := spec.Strategy.Setup(spec.Learner, spec.Range, verbosity)
	if err != nil {
		return nil, nil, Report{}, fmt.Errorf("strategy setup: %w", err)
	}

	template := &resample.Evaluator{
		Model:      spec.Learner.Clone(),
		Resampling: spec.Resampling,
		Measures:   spec.Measures,
		Weights:    spec.Weights,
		Operation:  spec.Operation,
		Check:      spec.Check,
		Repeats:    spec.Repeats,
		Accel:      spec.InnerAccel,
		Seed:       spec.Seed,
	}
	pool := search.NewPool(template)

	history, err := search.Build(ctx, nil, target, buildSpec(spec, state, pool, ds, verbosity))
	if err != nil {
		return nil, nil, Report{}, err
	}
	return finish(ctx, spec, verbosity, ds, history, target, state, pool)
}

// Update extends a prior search when only the iteration budget grew;
// any other configuration change, or a lowered budget, discards all prior
// state and refits from scratch. History is cumulative evidence, so a
// lowered budget never truncates it.
func Update(ctx context.Context, spec Spec, verbosity int, meta *MetaState, ds learner.Dataset) (*Trained, *MetaState, Report, error) {
	if meta == nil {
		return Fit(ctx, spec, verbosity, ds)
	}
	if err := validate(spec); err != nil {
		return nil, nil, Report{}, err
	}
	target, err := resolveTarget(spec)
	if err != nil {
		return nil, nil, Report{}, err
	}
	if !snapshotOf(spec).equal(meta.snapshot) || target < meta.Target {
		if verbosity >= 1 {
			logger(spec).Info("tuning configuration changed; refitting from scratch")
		}
		return Fit(ctx, spec, verbosity, ds)
	}

	history, err := search.Build(ctx, meta.History, target, buildSpec(spec, meta.State, meta.Pool, ds, verbosity))
	if err != nil {
		return nil, nil, Report{}, err
	}
	return finish(ctx, spec, verbosity, ds, history, target, meta.State, meta.Pool)
}

func buildSpec(spec Spec, state strategy.State, pool *search.Pool, ds learner.Dataset, verbosity int) search.BuildSpec {
	return search.BuildSpec{
		Strategy:  spec.Strategy,
		State:     state,
		Data:      ds,
		Accel:     spec.Accel,
		Pool:      pool,
		Logger:    spec.Logger,
		Verbosity: verbosity,
	}
}

func finish(
	ctx context.Context,
	spec Spec,
	verbosity int,
	ds learner.Dataset,
	history strategy.History,
	target int,
	state strategy.State,
	pool *search.Pool,
) (*Trained, *MetaState, Report, error) {
	best, bestResult, err := spec.Strategy.SelectBest(history)
	if err != nil {
		return nil, nil, Report{}, fmt.Errorf("select best: %w", err)
	}

	trained := &Trained{Best: best.Clone()}
	var bestReport map[string]any
	if spec.TrainBest {
		fitted, err := trained.Best.Fit(ctx, ds)
		if err != nil {
			return nil, nil, Report{}, fmt.Errorf("train best model: %w", err)
		}
		trained.Fitted = fitted
		bestReport = fitted.Report()
	}
	if verbosity >= 1 {
		logger(spec).Info("tuning complete",
			"evaluations", len(history),
			"best_params", best.Params(),
		)
	}

	report := Report{
		BestModel:  best,
		BestResult: bestResult,
		BestReport: bestReport,
		Summary:    spec.Strategy.Summarize(history, state),
		History:    history,
	}
	meta := &MetaState{
		History:  history,
		Target:   target,
		State:    state,
		Pool:     pool,
		snapshot: snapshotOf(spec),
	}
	return trained, meta, report, nil
}

func logger(spec Spec) *slog.Logger {
	if spec.Logger != nil {
		return spec.Logger
	}
	return slog.Default()
}
