package measure

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Measure scores predictions against ground truth. Lower is better.
// Weights may be nil; when present they must match len(truth).
type Measure interface {
	Name() string
	Score(pred, truth, weights []float64) (float64, error)
}

func checkLengths(pred, truth, weights []float64) error {
	if len(pred) != len(truth) {
		return fmt.Errorf("prediction length %d does not match truth length %d", len(pred), len(truth))
	}
	if len(truth) == 0 {
		return errors.New("empty evaluation set")
	}
	if weights != nil && len(weights) != len(truth) {
		return fmt.Errorf("weight length %d does not match truth length %d", len(weights), len(truth))
	}
	return nil
}

// RMSE is root mean squared error.
type RMSE struct{}

func (RMSE) Name() string { return "rmse" }

func (RMSE) Score(pred, truth, weights []float64) (float64, error) {
	if err := checkLengths(pred, truth, weights); err != nil {
		return 0, err
	}
	sq := make([]float64, len(pred))
	for i := range pred {
		d := pred[i] - truth[i]
		sq[i] = d * d
	}
	return math.Sqrt(stat.Mean(sq, weights)), nil
}

// MAE is mean absolute error.
type MAE struct{}

func (MAE) Name() string { return "mae" }

func (MAE) Score(pred, truth, weights []float64) (float64, error) {
	if err := checkLengths(pred, truth, weights); err != nil {
		return 0, err
	}
	abs := make([]float64, len(pred))
	for i := range pred {
		abs[i] = math.Abs(pred[i] - truth[i])
	}
	return stat.Mean(abs, weights), nil
}

// Misclassification is the weighted rate of label mismatches. Predictions
// are rounded to the nearest label before comparison.
type Misclassification struct{}

func (Misclassification) Name() string { return "misclassification" }

func (Misclassification) Score(pred, truth, weights []float64) (float64, error) {
	if err := checkLengths(pred, truth, weights); err != nil {
		return 0, err
	}
	miss := make([]float64, len(pred))
	for i := range pred {
		if math.Round(pred[i]) != truth[i] {
			miss[i] = 1
		}
	}
	return stat.Mean(miss, weights), nil
}
