package strategy

import (
	"fmt"
	"math/rand"

	"hypertune/internal/learner"
	"hypertune/internal/model"
)

// RandomSearch samples points uniformly from the range. MaxIterations
// caps the total supply; 0 means unbounded.
type RandomSearch struct {
	Seed          int64
	MaxIterations int
}

func (RandomSearch) Name() string { return "random" }

type randomState struct {
	prototype learner.Learner
	ranges    Range
	rng       *rand.Rand
	proposed  int
	limit     int
}

func (s RandomSearch) Setup(prototype learner.Learner, ranges Range, _ int) (State, error) {
	if err := ValidateRange(prototype, ranges); err != nil {
		return nil, err
	}
	return &randomState{
		prototype: prototype,
		ranges:    append(Range(nil), ranges...),
		rng:       rand.New(rand.NewSource(s.Seed)),
		limit:     s.MaxIterations,
	}, nil
}

func (RandomSearch) ProposeBatch(state State, _ History, remaining, _ int) ([]Candidate, error) {
	rs, ok := state.(*randomState)
	if !ok {
		return nil, fmt.Errorf("random: unexpected state type %T", state)
	}
	if remaining <= 0 {
		return nil, nil
	}
	count := remaining
	if rs.limit > 0 {
		left := rs.limit - rs.proposed
		if left <= 0 {
			return nil, nil
		}
		if count > left {
			count = left
		}
	}
	out := make([]Candidate, 0, count)
	for i := 0; i < count; i++ {
		point := make(map[string]float64, len(rs.ranges))
		for _, p := range rs.ranges {
			point[p.Name] = samplePoint(p, rs.rng)
		}
		configured, err := Configure(rs.prototype, point)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Model: configured, Meta: point})
	}
	rs.proposed += count
	return out, nil
}

func samplePoint(p Param, rng *rand.Rand) float64 {
	if len(p.Values) > 0 {
		return p.Values[rng.Intn(len(p.Values))]
	}
	if p.Step > 0 {
		// Sample on the lattice so grid and random search share a
		// support.
		steps := int((p.Max-p.Min)/p.Step) + 1
		return p.Min + float64(rng.Intn(steps))*p.Step
	}
	return p.Min + rng.Float64()*(p.Max-p.Min)
}

func (RandomSearch) MakeResult(_ History, _ State, eval model.Evaluation, meta any) (any, error) {
	point, _ := meta.(map[string]float64)
	return PointResult{Point: point, Eval: eval}, nil
}

func (RandomSearch) SelectBest(history History) (learner.Learner, any, error) {
	return selectLowestFirstMeasure(history)
}

func (RandomSearch) Summarize(history History, state State) map[string]any {
	out := map[string]any{"strategy": "random", "evaluated": len(history)}
	if rs, ok := state.(*randomState); ok {
		out["proposed"] = rs.proposed
		if rs.limit > 0 {
			out["limit"] = rs.limit
		}
	}
	return out
}

func (s RandomSearch) DefaultIterations(_ Range) (int, bool) {
	if s.MaxIterations > 0 {
		return s.MaxIterations, true
	}
	return 0, false
}
