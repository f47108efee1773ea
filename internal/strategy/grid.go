package strategy

import (
	"fmt"

	"hypertune/internal/learner"
	"hypertune/internal/model"
)

// PointResult is the history result shape shared by the shipped
// strategies: the search-space point and the evaluation it produced.
type PointResult struct {
	Point map[string]float64 `json:"point"`
	Eval  model.Evaluation   `json:"eval"`
}

// Grid exhaustively enumerates the cartesian product of each parameter's
// levels, in range order.
type Grid struct{}

func (Grid) Name() string { return "grid" }

type gridState struct {
	prototype learner.Learner
	points    []map[string]float64
	next      int
}

func (Grid) Setup(prototype learner.Learner, ranges Range, _ int) (State, error) {
	if err := ValidateRange(prototype, ranges); err != nil {
		return nil, err
	}
	points, err := expandGrid(ranges)
	if err != nil {
		return nil, err
	}
	return &gridState{prototype: prototype, points: points}, nil
}

func (Grid) ProposeBatch(state State, _ History, remaining, _ int) ([]Candidate, error) {
	gs, ok := state.(*gridState)
	if !ok {
		return nil, fmt.Errorf("grid: unexpected state type %T", state)
	}
	if remaining <= 0 || gs.next >= len(gs.points) {
		return nil, nil
	}
	end := gs.next + remaining
	if end > len(gs.points) {
		end = len(gs.points)
	}
	out := make([]Candidate, 0, end-gs.next)
	for _, point := range gs.points[gs.next:end] {
		configured, err := Configure(gs.prototype, point)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Model: configured, Meta: point})
	}
	gs.next = end
	return out, nil
}

func (Grid) MakeResult(_ History, _ State, eval model.Evaluation, meta any) (any, error) {
	point, _ := meta.(map[string]float64)
	return PointResult{Point: point, Eval: eval}, nil
}

func (Grid) SelectBest(history History) (learner.Learner, any, error) {
	return selectLowestFirstMeasure(history)
}

func (Grid) Summarize(history History, state State) map[string]any {
	out := map[string]any{"strategy": "grid", "evaluated": len(history)}
	if gs, ok := state.(*gridState); ok {
		out["grid_size"] = len(gs.points)
		out["proposed"] = gs.next
	}
	return out
}

func (Grid) DefaultIterations(ranges Range) (int, bool) {
	points, err := expandGrid(ranges)
	if err != nil {
		return 0, false
	}
	return len(points), true
}

func expandGrid(ranges Range) ([]map[string]float64, error) {
	levels := make([][]float64, len(ranges))
	for i, p := range ranges {
		ls, err := p.levels()
		if err != nil {
			return nil, err
		}
		levels[i] = ls
	}
	points := []map[string]float64{{}}
	for i, p := range ranges {
		next := make([]map[string]float64, 0, len(points)*len(levels[i]))
		for _, base := range points {
			for _, v := range levels[i] {
				point := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					point[k] = bv
				}
				point[p.Name] = v
				next = append(next, point)
			}
		}
		points = next
	}
	return points, nil
}

// selectLowestFirstMeasure picks the entry with the lowest first-measure
// value; ties resolve to the earliest entry so selection is a pure
// function of history.
func selectLowestFirstMeasure(history History) (learner.Learner, any, error) {
	if len(history) == 0 {
		return nil, nil, ErrEmptyHistory
	}
	bestIdx := -1
	bestValue := 0.0
	for i, rec := range history {
		pr, ok := rec.Result.(PointResult)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected result type %T at history index %d", rec.Result, i)
		}
		if len(pr.Eval.Values) == 0 {
			return nil, nil, fmt.Errorf("history index %d has no measure values", i)
		}
		if bestIdx < 0 || pr.Eval.Values[0] < bestValue {
			bestIdx = i
			bestValue = pr.Eval.Values[0]
		}
	}
	return history[bestIdx].Model, history[bestIdx].Result, nil
}
