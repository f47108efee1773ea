// Package hypertune is the public surface of the tuning platform: it wires
// the tuned-model controller to a run archive and exposes the operations
// the CLI drives.
package hypertune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"hypertune/internal/learner"
	"hypertune/internal/measure"
	"hypertune/internal/model"
	"hypertune/internal/resample"
	"hypertune/internal/storage"
	"hypertune/internal/strategy"
	"hypertune/internal/tuned"
)

const defaultDBPath = "hypertune.db"

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger
}

func New(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest describes one tuning run over a synthetic regression dataset.
type RunRequest struct {
	Learner    string
	Strategy   string
	Ranges     []strategy.Param
	Iterations int
	Folds      int
	Repeats    int
	Holdout    float64
	Measures   []string
	TrainBest  bool
	Accel      string
	InnerAccel string
	Workers    int
	Seed       int64
	DataPoints int
	DataNoise  float64
	Verbosity  int
}

type RunSummary struct {
	RunID       string
	Evaluations int
	BestParams  map[string]float64
	BestValue   float64
	BestMeasure string
	Summary     map[string]any
	Elapsed     time.Duration
}

// Run executes a full fit, archives the outcome, and returns its summary.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	spec, err := c.buildSpec(req)
	if err != nil {
		return RunSummary{}, err
	}
	ds := syntheticDataset(req.DataPoints, req.DataNoise, req.Seed)

	started := time.Now()
	_, _, report, err := tuned.Fit(ctx, spec, req.Verbosity, ds)
	if err != nil {
		return RunSummary{}, err
	}
	elapsed := time.Since(started)

	best, ok := report.BestResult.(strategy.PointResult)
	if !ok {
		return RunSummary{}, fmt.Errorf("unexpected best result type %T", report.BestResult)
	}

	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           uuid.NewString(),
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Learner:      spec.Learner.Name(),
		Strategy:     spec.Strategy.Name(),
		Resampling:   spec.Resampling.Name(),
		Iterations:   len(report.History),
		BestParams:   report.BestModel.Params(),
		BestValue:    best.Eval.Values[0],
		BestMeasure:  best.Eval.Measures[0],
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, fmt.Errorf("archive run: %w", err)
	}
	if err := c.store.SaveHistory(ctx, run.ID, strategy.Points(report.History)); err != nil {
		return RunSummary{}, fmt.Errorf("archive history: %w", err)
	}

	return RunSummary{
		RunID:       run.ID,
		Evaluations: len(report.History),
		BestParams:  run.BestParams,
		BestValue:   run.BestValue,
		BestMeasure: run.BestMeasure,
		Summary:     report.Summary,
		Elapsed:     elapsed,
	}, nil
}

// Runs lists archived runs, most recent first.
func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx, limit)
}

// History returns the archived evaluation history of one run.
func (c *Client) History(ctx context.Context, runID string) ([]model.HistoryPoint, error) {
	points, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no history for run %s", runID)
	}
	return points, nil
}

func (c *Client) buildSpec(req RunRequest) (tuned.Spec, error) {
	base, err := learnerByName(req.Learner)
	if err != nil {
		return tuned.Spec{}, err
	}
	strat, err := strategyByName(req.Strategy, req.Seed, req.Iterations)
	if err != nil {
		return tuned.Spec{}, err
	}
	measures, err := measuresByName(req.Measures)
	if err != nil {
		return tuned.Spec{}, err
	}
	outer, err := accelByName(req.Accel, req.Workers)
	if err != nil {
		return tuned.Spec{}, err
	}
	inner, err := accelByName(req.InnerAccel, req.Workers)
	if err != nil {
		return tuned.Spec{}, err
	}
	if len(req.Ranges) == 0 {
		return tuned.Spec{}, errors.New("at least one parameter range is required")
	}

	var resampling resample.Resampling
	if req.Holdout > 0 {
		resampling = resample.Holdout{Fraction: req.Holdout, Shuffle: true}
	} else {
		resampling = resample.KFold{K: req.Folds, Shuffle: true}
	}

	return tuned.Spec{
		Learner:    base,
		Strategy:   strat,
		Range:      strategy.Range(req.Ranges),
		Resampling: resampling,
		Measures:   measures,
		TrainBest:  req.TrainBest,
		Repeats:    req.Repeats,
		Iterations: req.Iterations,
		Accel:      outer,
		InnerAccel: inner,
		Check:      true,
		Seed:       req.Seed,
		Logger:     c.logger,
	}, nil
}

func learnerByName(name string) (learner.Learner, error) {
	switch name {
	case "", "ridge":
		return &learner.Ridge{Lambda: 1}, nil
	case "knn":
		return &learner.KNN{K: 3}, nil
	default:
		return nil, fmt.Errorf("unknown learner: %s", name)
	}
}

func strategyByName(name string, seed int64, iterations int) (strategy.Strategy, error) {
	switch name {
	case "", "grid":
		return strategy.Grid{}, nil
	case "random":
		return strategy.RandomSearch{Seed: seed, MaxIterations: iterations}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
}

func measuresByName(names []string) ([]measure.Measure, error) {
	if len(names) == 0 {
		return []measure.Measure{measure.RMSE{}}, nil
	}
	out := make([]measure.Measure, 0, len(names))
	for _, name := range names {
		switch name {
		case "rmse":
			out = append(out, measure.RMSE{})
		case "mae":
			out = append(out, measure.MAE{})
		case "misclassification":
			out = append(out, measure.Misclassification{})
		default:
			return nil, fmt.Errorf("unknown measure: %s", name)
		}
	}
	return out, nil
}

func accelByName(name string, workers int) (model.Accel, error) {
	switch name {
	case "", string(model.AccelSequential):
		return model.Accel{Kind: model.AccelSequential}, nil
	case string(model.AccelSpawn):
		return model.Accel{Kind: model.AccelSpawn}, nil
	case string(model.AccelPool):
		if workers <= 0 {
			workers = 2
		}
		return model.Accel{Kind: model.AccelPool, Workers: workers}, nil
	default:
		return model.Accel{}, fmt.Errorf("unknown acceleration: %s", name)
	}
}

// syntheticDataset generates a noisy linear regression problem the demo
// learner tunes against.
func syntheticDataset(n int, noise float64, seed int64) learner.Dataset {
	if n <= 0 {
		n = 200
	}
	rng := rand.New(rand.NewSource(seed))
	ds := learner.Dataset{
		X: make([][]float64, n),
		Y: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x1 := rng.Float64()*10 - 5
		x2 := rng.Float64()*10 - 5
		ds.X[i] = []float64{x1, x2}
		ds.Y[i] = 3*x1 - 2*x2 + 1 + rng.NormFloat64()*noise
	}
	return ds
}
