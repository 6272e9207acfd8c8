package pipeline

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanSquaredError returns the mean squared error between actual and
// predicted values.
func MeanSquaredError(actual, predicted []float64) (float64, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return 0, errors.New("mse: empty or misaligned inputs")
	}

	diff := make([]float64, len(actual))
	floats.SubTo(diff, actual, predicted)
	floats.Mul(diff, diff)
	return stat.Mean(diff, nil), nil
}
