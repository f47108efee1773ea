package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hypertune/internal/learner"
	"hypertune/internal/measure"
	"hypertune/internal/model"
	"hypertune/internal/resample"
	"hypertune/internal/strategy"
)

// stubLearner has one hyperparameter "k"; its fitted model predicts the
// constant k, so with MAE against zero targets the evaluation cost of a
// configuration is exactly k.
type stubLearner struct {
	k      float64
	failAt float64
}

func (s *stubLearner) Name() string { return "stub" }

func (s *stubLearner) Clone() learner.Learner {
	out := *s
	return &out
}

func (s *stubLearner) Params() map[string]float64 {
	return map[string]float64{"k": s.k}
}

func (s *stubLearner) SetParam(name string, value float64) error {
	if name != "k" {
		return fmt.Errorf("stub has no hyperparameter %q", name)
	}
	s.k = value
	return nil
}

func (s *stubLearner) Fit(_ context.Context, _ learner.Dataset) (learner.Fitted, error) {
	if s.failAt != 0 && s.k == s.failAt {
		return nil, fmt.Errorf("induced failure at k=%g", s.k)
	}
	return stubFitted{k: s.k}, nil
}

type stubFitted struct{ k float64 }

func (f stubFitted) Predict(_ context.Context, x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = f.k
	}
	return out, nil
}

func (f stubFitted) LearnedParams() map[string]float64 {
	return map[string]float64{"k": f.k}
}

func (f stubFitted) Report() map[string]any { return nil }

func zeroDataset(n int) learner.Dataset {
	ds := learner.Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := range ds.X {
		ds.X[i] = []float64{float64(i)}
	}
	return ds
}

func kRange(maxK int) strategy.Range {
	values := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		values = append(values, float64(k))
	}
	return strategy.Range{strategy.Levels("k", values...)}
}

func newTestSpec(t *testing.T, maxK int, accel model.Accel, failAt float64) (BuildSpec, strategy.Strategy) {
	t.Helper()

	prototype := &stubLearner{failAt: failAt}
	strat := strategy.Grid{}
	state, err := strat.Setup(prototype, kRange(maxK), 0)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	template := &resample.Evaluator{
		Model:      prototype.Clone(),
		Resampling: resample.Holdout{Fraction: 0.5},
		Measures:   []measure.Measure{measure.MAE{}},
	}
	return BuildSpec{
		Strategy: strat,
		State:    state,
		Data:     zeroDataset(4),
		Accel:    accel,
		Pool:     NewPool(template),
	}, strat
}

func costOf(t *testing.T, rec strategy.Record) float64 {
	t.Helper()
	pr, ok := rec.Result.(strategy.PointResult)
	if !ok {
		t.Fatalf("unexpected result type %T", rec.Result)
	}
	return pr.Eval.Values[0]
}

func TestDispatchPolicyEquivalence(t *testing.T) {
	policies := map[string]model.Accel{
		"sequential": {Kind: model.AccelSequential},
		"spawn":      {Kind: model.AccelSpawn},
		"pool":       {Kind: model.AccelPool, Workers: 3},
	}

	var want []float64
	for name, accel := range policies {
		spec, strat := newTestSpec(t, 8, accel, 0)
		batch, err := strat.ProposeBatch(spec.State, nil, 8, 0)
		if err != nil {
			t.Fatalf("%s propose: %v", name, err)
		}
		records, err := Dispatch(context.Background(), batch, spec, nil)
		if err != nil {
			t.Fatalf("%s dispatch: %v", name, err)
		}
		got := make([]float64, len(records))
		for i, rec := range records {
			got[i] = costOf(t, rec)
		}
		if want == nil {
			want = got
			continue
		}
		if len(got) != len(want) {
			t.Fatalf("%s: got %d records, want %d", name, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s: record %d cost %f, want %f", name, i, got[i], want[i])
			}
		}
	}
}

func TestDispatchPreservesOrderUnderPool(t *testing.T) {
	spec, strat := newTestSpec(t, 10, model.Accel{Kind: model.AccelPool, Workers: 4}, 0)
	batch, err := strat.ProposeBatch(spec.State, nil, 10, 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	records, err := Dispatch(context.Background(), batch, spec, nil)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	for i, rec := range records {
		if got := costOf(t, rec); got != float64(i+1) {
			t.Fatalf("record %d has cost %f, want %d", i, got, i+1)
		}
	}
}

func TestDispatchPoolPopulatesWorkersLazily(t *testing.T) {
	spec, strat := newTestSpec(t, 6, model.Accel{Kind: model.AccelPool, Workers: 3}, 0)
	batch, err := strat.ProposeBatch(spec.State, nil, 6, 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := Dispatch(context.Background(), batch, spec, nil); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// Worker 0 uses the template; workers 1 and 2 get private clones.
	if got := spec.Pool.Size(); got != 2 {
		t.Fatalf("pool materialized %d clones, want 2", got)
	}
}

func TestBuildReachesTargetExactly(t *testing.T) {
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 0)
	history, err := Build(context.Background(), nil, 10, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("history length %d, want 10", len(history))
	}
}

func TestBuildStopsOnExhaustedSupply(t *testing.T) {
	spec, _ := newTestSpec(t, 4, model.Accel{Kind: model.AccelSequential}, 0)
	history, err := Build(context.Background(), nil, 10, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history length %d, want 4", len(history))
	}
}

func TestBuildPreservesHistoryPrefix(t *testing.T) {
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 0)
	first, err := Build(context.Background(), nil, 5, spec)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	snapshot := make([]float64, len(first))
	for i, rec := range first {
		snapshot[i] = costOf(t, rec)
	}

	extended, err := Build(context.Background(), first, 10, spec)
	if err != nil {
		t.Fatalf("extend build: %v", err)
	}
	if len(extended) != 10 {
		t.Fatalf("extended length %d, want 10", len(extended))
	}
	for i := range snapshot {
		if got := costOf(t, extended[i]); got != snapshot[i] {
			t.Fatalf("prefix entry %d changed: got %f, want %f", i, got, snapshot[i])
		}
	}
}

func TestBuildReturnsHistoryUnchangedWhenTargetMet(t *testing.T) {
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 0)
	history, err := Build(context.Background(), nil, 3, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	again, err := Build(context.Background(), history, 3, spec)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if len(again) != len(history) {
		t.Fatalf("history grew from %d to %d without a higher target", len(history), len(again))
	}
}

func TestBuildTruncatesOverlongBatch(t *testing.T) {
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 0)
	spec.Strategy = floodStrategy{Grid: strategy.Grid{}}
	history, err := Build(context.Background(), nil, 3, spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length %d, want 3", len(history))
	}
}

// floodStrategy ignores the remaining count and always proposes as many
// candidates as its grid still holds.
type floodStrategy struct {
	strategy.Grid
}

func (f floodStrategy) ProposeBatch(state strategy.State, history strategy.History, _, verbosity int) ([]strategy.Candidate, error) {
	return f.Grid.ProposeBatch(state, history, 1<<20, verbosity)
}

func TestBuildPropagatesEvaluationError(t *testing.T) {
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 7)
	_, err := Build(context.Background(), nil, 10, spec)
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("error %v is not ErrEvaluation", err)
	}
}

func TestBuildBatchesAreSequentialAcrossCalls(t *testing.T) {
	// A failing event aborts its batch; entries from earlier completed
	// builds survive untouched.
	spec, _ := newTestSpec(t, 10, model.Accel{Kind: model.AccelSequential}, 7)
	history, err := Build(context.Background(), nil, 5, spec)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history length %d, want 5", len(history))
	}
	_, err = Build(context.Background(), history, 10, spec)
	if !errors.Is(err, ErrEvaluation) {
		t.Fatalf("expected ErrEvaluation on extension, got %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("completed history mutated: length %d", len(history))
	}
}
