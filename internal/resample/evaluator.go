package resample

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"hypertune/internal/learner"
	"hypertune/internal/measure"
	"hypertune/internal/model"
)

// OpPredict is the only prediction operation the shipped learners support.
const OpPredict = "predict"

// Evaluator measures the performance of its current model slot via
// resampling. The tuning layer overwrites Model before each evaluation,
// which is why every concurrent worker must own its own Evaluator clone.
type Evaluator struct {
	Model      learner.Learner
	Resampling Resampling
	Measures   []measure.Measure
	Weights    []float64
	Operation  string
	Check      bool
	Repeats    int
	Accel      model.Accel
	Seed       int64
}

// Clone copies every evaluation setting so the copy can run concurrently
// with the original. The model slot is cloned too.
func (e *Evaluator) Clone() *Evaluator {
	out := &Evaluator{
		Resampling: e.Resampling,
		Measures:   append([]measure.Measure(nil), e.Measures...),
		Weights:    append([]float64(nil), e.Weights...),
		Operation:  e.Operation,
		Check:      e.Check,
		Repeats:    e.Repeats,
		Accel:      e.Accel,
		Seed:       e.Seed,
	}
	if e.Model != nil {
		out.Model = e.Model.Clone()
	}
	return out
}

func (e *Evaluator) validate(ds learner.Dataset) error {
	if e.Model == nil {
		return errors.New("evaluator has no model")
	}
	if e.Resampling == nil {
		return errors.New("evaluator has no resampling strategy")
	}
	if len(e.Measures) == 0 {
		return errors.New("evaluator has no measures")
	}
	if e.Operation != "" && e.Operation != OpPredict {
		return fmt.Errorf("unsupported prediction operation %q", e.Operation)
	}
	if e.Check {
		if e.Weights != nil && len(e.Weights) != ds.Len() {
			return fmt.Errorf("weight length %d does not match dataset length %d", len(e.Weights), ds.Len())
		}
	}
	return nil
}

// Evaluate fits the current model on every fold's training rows and scores
// predictions on the fold's test rows, once per repeat.
func (e *Evaluator) Evaluate(ctx context.Context, ds learner.Dataset) (model.Evaluation, error) {
	if err := e.validate(ds); err != nil {
		return model.Evaluation{}, err
	}
	repeats := e.Repeats
	if repeats <= 0 {
		repeats = 1
	}

	weighted := ds
	if weighted.Weights == nil && e.Weights != nil {
		weighted.Weights = e.Weights
	}

	var folds []Fold
	for r := 0; r < repeats; r++ {
		rng := rand.New(rand.NewSource(e.Seed + int64(r)))
		fs, err := e.Resampling.Folds(weighted.Len(), rng)
		if err != nil {
			return model.Evaluation{}, fmt.Errorf("build folds: %w", err)
		}
		folds = append(folds, fs...)
	}

	// scores[measure][fold]
	scores := make([][]float64, len(e.Measures))
	for i := range scores {
		scores[i] = make([]float64, len(folds))
	}

	scoreFold := func(ctx context.Context, f int) error {
		fold := folds[f]
		train := weighted.Subset(fold.Train)
		test := weighted.Subset(fold.Test)
		fitted, err := e.Model.Fit(ctx, train)
		if err != nil {
			return fmt.Errorf("fit fold %d: %w", f, err)
		}
		pred, err := fitted.Predict(ctx, test.X)
		if err != nil {
			return fmt.Errorf("predict fold %d: %w", f, err)
		}
		for m, ms := range e.Measures {
			value, err := ms.Score(pred, test.Y, test.Weights)
			if err != nil {
				return fmt.Errorf("score %s on fold %d: %w", ms.Name(), f, err)
			}
			scores[m][f] = value
		}
		return nil
	}

	if err := e.runFolds(ctx, len(folds), scoreFold); err != nil {
		return model.Evaluation{}, err
	}

	eval := model.Evaluation{
		Measures: make([]string, len(e.Measures)),
		Values:   make([]float64, len(e.Measures)),
		PerFold:  scores,
		FoldStd:  make([]float64, len(e.Measures)),
		Repeats:  repeats,
	}
	for m, ms := range e.Measures {
		eval.Measures[m] = ms.Name()
		eval.Values[m] = stat.Mean(scores[m], nil)
		if sd, err := mstats.StandardDeviation(scores[m]); err == nil {
			eval.FoldStd[m] = sd
		}
	}
	return eval, nil
}

// runFolds applies the evaluator's own acceleration setting across folds.
// Fold results land in disjoint slice slots, so only the scheduling varies.
func (e *Evaluator) runFolds(ctx context.Context, n int, scoreFold func(context.Context, int) error) error {
	switch {
	case e.Accel.Kind == model.AccelSpawn,
		e.Accel.Kind == model.AccelPool && e.Accel.Workers > 1:
		g, gctx := errgroup.WithContext(ctx)
		if e.Accel.Kind == model.AccelPool {
			g.SetLimit(e.Accel.Workers)
		}
		for f := 0; f < n; f++ {
			g.Go(func() error { return scoreFold(gctx, f) })
		}
		return g.Wait()
	default:
		for f := 0; f < n; f++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := scoreFold(ctx, f); err != nil {
				return err
			}
		}
		return nil
	}
}
