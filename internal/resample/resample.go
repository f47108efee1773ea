package resample

import (
	"fmt"
	"math/rand"
)

// Fold is one train/test split expressed as row indices.
type Fold struct {
	Train []int
	Test  []int
}

// Resampling produces the train/test splits an Evaluator measures a model
// configuration over.
type Resampling interface {
	Name() string
	Folds(n int, rng *rand.Rand) ([]Fold, error)
}

// Holdout splits rows into one train/test pair. Fraction is the share of
// rows assigned to training.
type Holdout struct {
	Fraction float64
	Shuffle  bool
}

func (Holdout) Name() string { return "holdout" }

func (h Holdout) Folds(n int, rng *rand.Rand) ([]Fold, error) {
	fraction := h.Fraction
	if fraction == 0 {
		fraction = 0.7
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, fmt.Errorf("holdout fraction must be in (0, 1), got %f", fraction)
	}
	if n < 2 {
		return nil, fmt.Errorf("holdout needs at least 2 rows, got %d", n)
	}
	cut := int(fraction * float64(n))
	if cut < 1 {
		cut = 1
	}
	if cut >= n {
		cut = n - 1
	}
	idx := orderedIndices(n, h.Shuffle, rng)
	return []Fold{{
		Train: append([]int(nil), idx[:cut]...),
		Test:  append([]int(nil), idx[cut:]...),
	}}, nil
}

// KFold partitions rows into K folds; each fold serves as the test set once.
type KFold struct {
	K       int
	Shuffle bool
}

func (KFold) Name() string { return "kfold" }

func (k KFold) Folds(n int, rng *rand.Rand) ([]Fold, error) {
	folds := k.K
	if folds == 0 {
		folds = 5
	}
	if folds < 2 {
		return nil, fmt.Errorf("kfold needs k >= 2, got %d", folds)
	}
	if n < folds {
		return nil, fmt.Errorf("kfold needs at least %d rows, got %d", folds, n)
	}
	idx := orderedIndices(n, k.Shuffle, rng)

	out := make([]Fold, 0, folds)
	start := 0
	for f := 0; f < folds; f++ {
		size := n / folds
		if f < n%folds {
			size++
		}
		test := idx[start : start+size]
		train := make([]int, 0, n-size)
		train = append(train, idx[:start]...)
		train = append(train, idx[start+size:]...)
		out = append(out, Fold{
			Train: train,
			Test:  append([]int(nil), test...),
		})
		start += size
	}
	return out, nil
}

func orderedIndices(n int, shuffle bool, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if shuffle && rng != nil {
		rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	}
	return idx
}
