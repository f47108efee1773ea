package tuned

import (
	"encoding/json"
	"maps"
	"slices"

	"hypertune/internal/model"
	"hypertune/internal/strategy"
)

// snapshot is the deep copy of the controller configuration kept inside
// meta-state. Update compares a fresh snapshot against the stored one,
// field by field, with the iteration budget deliberately excluded: raising
// the budget is the one change that extends a search instead of rebuilding
// it.
type snapshot struct {
	learnerName    string
	learnerParams  map[string]float64
	strategyConf   string
	resamplingConf string
	measures       []string
	weights        []float64
	operation      string
	ranges         strategy.Range
	trainBest      bool
	repeats        int
	accel          model.Accel
	innerAccel     model.Accel
	check          bool
	seed           int64
}

func snapshotOf(spec Spec) snapshot {
	out := snapshot{
		learnerName:    spec.Learner.Name(),
		strategyConf:   fingerprint(spec.Strategy.Name(), spec.Strategy),
		resamplingConf: fingerprint(spec.Resampling.Name(), spec.Resampling),
		measures:       make([]string, len(spec.Measures)),
		weights:        append([]float64(nil), spec.Weights...),
		operation:      spec.Operation,
		ranges:         deepCopyRange(spec.Range),
		trainBest:      spec.TrainBest,
		repeats:        spec.Repeats,
		accel:          spec.Accel,
		innerAccel:     spec.InnerAccel,
		check:          spec.Check,
		seed:           spec.Seed,
	}
	out.learnerParams = maps.Clone(spec.Learner.Params())
	for i, m := range spec.Measures {
		out.measures[i] = m.Name()
	}
	return out
}

// fingerprint captures a collaborator's full parameterization, not just its
// name: KFold{K:2} and KFold{K:5} must compare unequal. The JSON encoding
// covers every exported field deterministically; a value that cannot be
// encoded falls back to its name alone.
func fingerprint(name string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return name
	}
	return name + ":" + string(data)
}

func deepCopyRange(r strategy.Range) strategy.Range {
	out := make(strategy.Range, len(r))
	for i, p := range r {
		p.Values = append([]float64(nil), p.Values...)
		out[i] = p
	}
	return out
}

func (s snapshot) equal(other snapshot) bool {
	return s.learnerName == other.learnerName &&
		maps.Equal(s.learnerParams, other.learnerParams) &&
		s.strategyConf == other.strategyConf &&
		s.resamplingConf == other.resamplingConf &&
		slices.Equal(s.measures, other.measures) &&
		slices.Equal(s.weights, other.weights) &&
		s.operation == other.operation &&
		slices.EqualFunc(s.ranges, other.ranges, paramEqual) &&
		s.trainBest == other.trainBest &&
		s.repeats == other.repeats &&
		s.accel == other.accel &&
		s.innerAccel == other.innerAccel &&
		s.check == other.check &&
		s.seed == other.seed
}

func paramEqual(a, b strategy.Param) bool {
	return a.Name == b.Name &&
		a.Min == b.Min &&
		a.Max == b.Max &&
		a.Step == b.Step &&
		slices.Equal(a.Values, b.Values)
}
