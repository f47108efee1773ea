package strategy

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"hypertune/internal/learner"
	"hypertune/internal/model"
)

// ErrConfiguration reports a range that is structurally incompatible with
// the prototype model, or a missing model/range.
var ErrConfiguration = errors.New("invalid tuning configuration")

// ErrEmptyHistory reports best-selection over a history with no entries.
var ErrEmptyHistory = errors.New("tuning history is empty")

// Param describes the search range of one hyperparameter. Values, when
// set, enumerates the levels directly; otherwise Min/Max bound the range
// and Step (for grid-style strategies) fixes the lattice spacing.
type Param struct {
	Name   string    `json:"name"`
	Min    float64   `json:"min,omitempty"`
	Max    float64   `json:"max,omitempty"`
	Step   float64   `json:"step,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Range is the full hyperparameter search space.
type Range []Param

// NumericRange builds a Param over [min, max] with unit-like spacing for
// any numeric type.
func NumericRange[T constraints.Integer | constraints.Float](name string, min, max, step T) Param {
	return Param{Name: name, Min: float64(min), Max: float64(max), Step: float64(step)}
}

// Levels builds a Param from explicit values.
func Levels[T constraints.Integer | constraints.Float](name string, values ...T) Param {
	out := Param{Name: name, Values: make([]float64, len(values))}
	for i, v := range values {
		out.Values[i] = float64(v)
	}
	return out
}

// levels expands a Param into its concrete grid levels.
func (p Param) levels() ([]float64, error) {
	if len(p.Values) > 0 {
		return append([]float64(nil), p.Values...), nil
	}
	if p.Step <= 0 {
		return nil, fmt.Errorf("parameter %q needs explicit values or a positive step: %w", p.Name, ErrConfiguration)
	}
	if p.Max < p.Min {
		return nil, fmt.Errorf("parameter %q has max < min: %w", p.Name, ErrConfiguration)
	}
	var out []float64
	for v := p.Min; v <= p.Max+p.Step/1e9; v += p.Step {
		out = append(out, v)
	}
	return out, nil
}

// Candidate pairs a configured model clone with opaque strategy-private
// metadata. The orchestration layer forwards Meta to MakeResult unchanged
// and never inspects it.
type Candidate struct {
	Model learner.Learner
	Meta  any
}

// Record is one history entry: the evaluated configuration and the
// strategy-defined result built from its evaluation.
type Record struct {
	Model  learner.Learner
	Result any
}

// History is the append-only record of every evaluation performed in one
// logical search, across fit and update calls.
type History []Record

// State is strategy-private search state threaded through ProposeBatch.
type State any

// Strategy is the protocol every tuning strategy satisfies.
type Strategy interface {
	Name() string

	// Setup initializes strategy state for a fresh search.
	Setup(prototype learner.Learner, ranges Range, verbosity int) (State, error)

	// ProposeBatch returns up to remaining new candidates. Fewer than
	// requested signals supply exhaustion; none signals terminal
	// exhaustion. Adaptive strategies may inspect history but must not
	// mutate it.
	ProposeBatch(state State, history History, remaining, verbosity int) ([]Candidate, error)

	// MakeResult converts one raw evaluation into an appendable result.
	MakeResult(history History, state State, eval model.Evaluation, meta any) (any, error)

	// SelectBest picks the winning entry. It is a deterministic function
	// of history alone.
	SelectBest(history History) (learner.Learner, any, error)

	// Summarize produces the strategy-specific fragment of the final
	// report.
	Summarize(history History, state State) map[string]any

	// DefaultIterations is the iteration budget used when the controller
	// leaves it unset. bounded=false means the supply is unbounded.
	DefaultIterations(ranges Range) (n int, bounded bool)
}

// ValidateRange checks that every named hyperparameter is settable on the
// prototype. It is the shared setup gate for the shipped strategies.
func ValidateRange(prototype learner.Learner, ranges Range) error {
	if prototype == nil {
		return fmt.Errorf("no prototype model supplied: %w", ErrConfiguration)
	}
	if len(ranges) == 0 {
		return fmt.Errorf("no hyperparameter range supplied: %w", ErrConfiguration)
	}
	probe := prototype.Clone()
	for _, p := range ranges {
		if p.Name == "" {
			return fmt.Errorf("unnamed parameter in range: %w", ErrConfiguration)
		}
		value := p.Min
		if len(p.Values) > 0 {
			value = p.Values[0]
		}
		if err := probe.SetParam(p.Name, value); err != nil {
			return fmt.Errorf("range parameter %q does not fit model %s: %v: %w",
				p.Name, prototype.Name(), err, ErrConfiguration)
		}
	}
	return nil
}

// Configure clones the prototype and applies one point of the search
// space to it.
func Configure(prototype learner.Learner, point map[string]float64) (learner.Learner, error) {
	clone := prototype.Clone()
	for name, value := range point {
		if err := clone.SetParam(name, value); err != nil {
			return nil, fmt.Errorf("apply %s=%f: %w", name, value, err)
		}
	}
	return clone, nil
}
