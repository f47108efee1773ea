package learner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

// KNN is a k-nearest-neighbors regressor. Its tunable hyperparameter "k"
// is the neighborhood size.
type KNN struct {
	K int
}

func (k *KNN) Name() string { return "knn" }

func (k *KNN) Clone() Learner {
	out := *k
	return &out
}

func (k *KNN) Params() map[string]float64 {
	return map[string]float64{"k": float64(k.K)}
}

func (k *KNN) SetParam(name string, value float64) error {
	switch name {
	case "k":
		n := int(value)
		if n < 1 || float64(n) != value {
			return fmt.Errorf("k must be a positive integer, got %f", value)
		}
		k.K = n
		return nil
	default:
		return fmt.Errorf("knn has no hyperparameter %q", name)
	}
}

func (k *KNN) Fit(_ context.Context, ds Dataset) (Fitted, error) {
	n := ds.Len()
	if n == 0 {
		return nil, errors.New("empty dataset")
	}
	kk := k.K
	if kk == 0 {
		kk = 3
	}
	if kk > n {
		kk = n
	}
	// Neighbors are looked up against the training rows at predict time,
	// so fitting is just retaining them.
	return &knnFitted{
		x: append([][]float64(nil), ds.X...),
		y: append([]float64(nil), ds.Y...),
		k: kk,
	}, nil
}

type knnFitted struct {
	x [][]float64
	y []float64
	k int
}

func (f *knnFitted) Predict(_ context.Context, x [][]float64) ([]float64, error) {
	out := make([]float64, len(x))
	dist := make([]struct {
		d float64
		i int
	}, len(f.x))
	for qi, q := range x {
		if len(q) != len(f.x[0]) {
			return nil, fmt.Errorf("row %d has %d features, want %d", qi, len(q), len(f.x[0]))
		}
		for i, row := range f.x {
			sum := 0.0
			for j := range row {
				d := row[j] - q[j]
				sum += d * d
			}
			dist[i] = struct {
				d float64
				i int
			}{math.Sqrt(sum), i}
		}
		sort.Slice(dist, func(a, b int) bool {
			if dist[a].d == dist[b].d {
				return dist[a].i < dist[b].i
			}
			return dist[a].d < dist[b].d
		})
		sum := 0.0
		for _, nb := range dist[:f.k] {
			sum += f.y[nb.i]
		}
		out[qi] = sum / float64(f.k)
	}
	return out, nil
}

func (f *knnFitted) LearnedParams() map[string]float64 {
	return map[string]float64{"k": float64(f.k), "n_train": float64(len(f.y))}
}

func (f *knnFitted) Report() map[string]any {
	return map[string]any{"k": f.k, "n_train": len(f.y)}
}
