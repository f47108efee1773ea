package learner

import "context"

// Dataset is a plain in-memory supervised dataset. Weights, when present,
// must match len(Y).
type Dataset struct {
	X       [][]float64
	Y       []float64
	Weights []float64
}

// Len returns the number of observations.
func (d Dataset) Len() int { return len(d.Y) }

// Subset returns the rows named by idx. Weights follow when present.
func (d Dataset) Subset(idx []int) Dataset {
	out := Dataset{
		X: make([][]float64, 0, len(idx)),
		Y: make([]float64, 0, len(idx)),
	}
	if d.Weights != nil {
		out.Weights = make([]float64, 0, len(idx))
	}
	for _, i := range idx {
		out.X = append(out.X, d.X[i])
		out.Y = append(out.Y, d.Y[i])
		if d.Weights != nil {
			out.Weights = append(out.Weights, d.Weights[i])
		}
	}
	return out
}

// Learner is a hyperparameterized model prototype. Candidate configurations
// are produced by cloning a prototype and overwriting individual
// hyperparameters with SetParam.
type Learner interface {
	Name() string
	Clone() Learner
	Params() map[string]float64
	SetParam(name string, value float64) error
	Fit(ctx context.Context, ds Dataset) (Fitted, error)
}

// Fitted is the trained artifact produced by Learner.Fit.
type Fitted interface {
	Predict(ctx context.Context, x [][]float64) ([]float64, error)
	LearnedParams() map[string]float64
	Report() map[string]any
}
