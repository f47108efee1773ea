package strategy

import "hypertune/internal/model"

// Points projects a live history into its persistable form. Entries whose
// result is not a PointResult keep only the model's own parameters.
func Points(h History) []model.HistoryPoint {
	out := make([]model.HistoryPoint, 0, len(h))
	for i, rec := range h {
		point := model.HistoryPoint{Index: i}
		if rec.Model != nil {
			point.Params = rec.Model.Params()
		}
		if pr, ok := rec.Result.(PointResult); ok {
			point.Eval = pr.Eval
			if len(pr.Point) > 0 {
				point.Params = pr.Point
			}
		}
		out = append(out, point)
	}
	return out
}
