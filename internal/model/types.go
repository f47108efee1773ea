package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// AccelKind selects how a batch of evaluations is scheduled.
type AccelKind string

const (
	// AccelSequential runs events one at a time on a single evaluator.
	AccelSequential AccelKind = "sequential"
	// AccelSpawn runs every event on its own goroutine with a private
	// evaluator clone.
	AccelSpawn AccelKind = "spawn"
	// AccelPool partitions the batch across a fixed set of workers, each
	// holding a lazily created evaluator clone.
	AccelPool AccelKind = "pool"
)

// Accel pairs a scheduling kind with the worker budget it may use.
// Workers is ignored by AccelSequential and AccelSpawn.
type Accel struct {
	Kind    AccelKind `json:"kind"`
	Workers int       `json:"workers,omitempty"`
}

// Evaluation is the raw outcome of resampling one model configuration:
// one aggregated value per measure, plus the per-fold values they were
// aggregated from. The first measure is the one tuning optimizes; the
// rest are reported only.
type Evaluation struct {
	Measures []string    `json:"measures"`
	Values   []float64   `json:"values"`
	PerFold  [][]float64 `json:"per_fold,omitempty"`
	FoldStd  []float64   `json:"fold_std,omitempty"`
	Repeats  int         `json:"repeats,omitempty"`
}

// HistoryPoint is the persistable projection of one tuning evaluation.
type HistoryPoint struct {
	Index  int                `json:"index"`
	Params map[string]float64 `json:"params"`
	Eval   Evaluation         `json:"eval"`
}

// RunRecord summarizes one archived tuning run.
type RunRecord struct {
	VersionedRecord
	ID           string             `json:"id"`
	CreatedAtUTC string             `json:"created_at_utc"`
	Learner      string             `json:"learner"`
	Strategy     string             `json:"strategy"`
	Resampling   string             `json:"resampling"`
	Iterations   int                `json:"iterations"`
	BestParams   map[string]float64 `json:"best_params"`
	BestValue    float64            `json:"best_value"`
	BestMeasure  string             `json:"best_measure"`
}
