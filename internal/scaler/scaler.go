// Package scaler provides fitted feature normalization transforms. A fitted
// scaler is paired 1:1 with the model trained on its output; the pair is
// persisted together but nothing validates the pairing on load.
package scaler

import (
	"encoding/gob"
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func init() {
	gob.Register(&Standard{})
	gob.Register(&MinMax{})
}

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("scaler not fitted")

// Scaler is a fitted per-column normalization transform.
type Scaler interface {
	// Fit learns column statistics from row-major training data.
	Fit(rows [][]float64)

	// Transform normalizes one feature vector. Returns ErrNotFitted before
	// Fit, or ErrWidthMismatch when the vector width differs from training.
	Transform(row []float64) ([]float64, error)
}

// ErrWidthMismatch is returned when a vector width differs from the fitted one.
var ErrWidthMismatch = errors.New("feature width mismatch")

// Standard is z-score normalization: (x − mean) / stddev per column.
type Standard struct {
	Means   []float64
	Stddevs []float64
	Fitted  bool
}

// NewStandard creates an unfitted standard scaler.
func NewStandard() *Standard {
	return &Standard{}
}

// Fit learns per-column mean and population standard deviation. Near-zero
// deviations are clamped to 1 to keep Transform defined.
func (s *Standard) Fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	s.Means = make([]float64, width)
	s.Stddevs = make([]float64, width)

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		s.Means[j] = stat.Mean(col, nil)
		s.Stddevs[j] = stat.PopStdDev(col, nil)
		if s.Stddevs[j] < 1e-10 || math.IsNaN(s.Stddevs[j]) {
			s.Stddevs[j] = 1
		}
	}
	s.Fitted = true
}

// Transform normalizes one feature vector.
func (s *Standard) Transform(row []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	if len(row) != len(s.Means) {
		return nil, ErrWidthMismatch
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stddevs[j]
	}
	return out, nil
}

// FitTransform fits on rows and returns the normalized copy.
func FitTransform(s Scaler, rows [][]float64) ([][]float64, error) {
	s.Fit(rows)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		t, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// MinMax scales each column linearly onto [0, 1].
type MinMax struct {
	Mins   []float64
	Maxs   []float64
	Fitted bool
}

// NewMinMax creates an unfitted min-max scaler.
func NewMinMax() *MinMax {
	return &MinMax{}
}

// Fit learns per-column minimum and maximum. Constant columns get a unit
// range so Transform maps them to 0.
func (s *MinMax) Fit(rows [][]float64) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	s.Mins = make([]float64, width)
	s.Maxs = make([]float64, width)

	col := make([]float64, len(rows))
	for j := 0; j < width; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		s.Mins[j] = floats.Min(col)
		s.Maxs[j] = floats.Max(col)
		if s.Maxs[j]-s.Mins[j] < 1e-12 {
			s.Maxs[j] = s.Mins[j] + 1
		}
	}
	s.Fitted = true
}

// Transform scales one feature vector onto [0, 1] per column.
func (s *MinMax) Transform(row []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, ErrNotFitted
	}
	if len(row) != len(s.Mins) {
		return nil, ErrWidthMismatch
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mins[j]) / (s.Maxs[j] - s.Mins[j])
	}
	return out, nil
}

// InverseColumn maps a scaled value back to the original range of column j.
func (s *MinMax) InverseColumn(j int, v float64) (float64, error) {
	if !s.Fitted {
		return 0, ErrNotFitted
	}
	if j < 0 || j >= len(s.Mins) {
		return 0, ErrWidthMismatch
	}
	return s.Mins[j] + v*(s.Maxs[j]-s.Mins[j]), nil
}
