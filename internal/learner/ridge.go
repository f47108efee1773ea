package learner

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ridge is an L2-regularized linear regressor. Its single tunable
// hyperparameter is the regularization strength "lambda".
type Ridge struct {
	Lambda float64
}

func (r *Ridge) Name() string { return "ridge" }

func (r *Ridge) Clone() Learner {
	out := *r
	return &out
}

func (r *Ridge) Params() map[string]float64 {
	return map[string]float64{"lambda": r.Lambda}
}

func (r *Ridge) SetParam(name string, value float64) error {
	switch name {
	case "lambda":
		if value < 0 {
			return fmt.Errorf("lambda must be >= 0, got %f", value)
		}
		r.Lambda = value
		return nil
	default:
		return fmt.Errorf("ridge has no hyperparameter %q", name)
	}
}

func (r *Ridge) Fit(_ context.Context, ds Dataset) (Fitted, error) {
	n := ds.Len()
	if n == 0 {
		return nil, errors.New("empty dataset")
	}
	p := len(ds.X[0])
	if p == 0 {
		return nil, errors.New("dataset has no features")
	}

	// Augment with a bias column; the intercept is not penalized any
	// differently from the weights here.
	cols := p + 1
	design := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		if len(ds.X[i]) != p {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(ds.X[i]), p)
		}
		for j := 0; j < p; j++ {
			design.Set(i, j, ds.X[i][j])
		}
		design.Set(i, p, 1)
	}
	y := mat.NewVecDense(n, append([]float64(nil), ds.Y...))

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 0; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+r.Lambda)
	}

	var rhs mat.VecDense
	rhs.MulVec(design.T(), y)

	var coef mat.VecDense
	if err := coef.SolveVec(&gram, &rhs); err != nil {
		return nil, fmt.Errorf("solve ridge system: %w", err)
	}

	weights := make([]float64, p)
	for j := 0; j < p; j++ {
		weights[j] = coef.AtVec(j)
	}
	return &ridgeFitted{weights: weights, bias: coef.AtVec(p), lambda: r.Lambda}, nil
}

type ridgeFitted struct {
	weights []float64
	bias    float64
	lambda  float64
}

func (f *ridgeFitted) Predict(_ context.Context, x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(f.weights) {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), len(f.weights))
		}
		sum := f.bias
		for j, v := range row {
			sum += f.weights[j] * v
		}
		out[i] = sum
	}
	return out, nil
}

func (f *ridgeFitted) LearnedParams() map[string]float64 {
	out := map[string]float64{"bias": f.bias}
	for j, w := range f.weights {
		out[fmt.Sprintf("w%d", j)] = w
	}
	return out
}

func (f *ridgeFitted) Report() map[string]any {
	return map[string]any{"lambda": f.lambda, "n_weights": len(f.weights)}
}
