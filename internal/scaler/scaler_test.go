package scaler

import (
	"errors"
	"math"
	"testing"
)

func TestStandard_TransformBeforeFit(t *testing.T) {
	s := NewStandard()
	_, err := s.Transform([]float64{1, 2})
	if !errors.Is(err, ErrNotFitted) {
		t.Errorf("expected ErrNotFitted, got %v", err)
	}
}

func TestStandard_ZScore(t *testing.T) {
	rows := [][]float64{{2}, {4}, {6}}
	s := NewStandard()
	s.Fit(rows)

	// Mean 4, population stddev sqrt(8/3)
	out, err := s.Transform([]float64{4})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if math.Abs(out[0]) > 1e-9 {
		t.Errorf("expected the mean to map to 0, got %f", out[0])
	}

	out, _ = s.Transform([]float64{6})
	want := 2.0 / math.Sqrt(8.0/3.0)
	if math.Abs(out[0]-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, out[0])
	}
}

func TestStandard_ConstantColumnClamped(t *testing.T) {
	// Zero deviation is clamped to 1 so Transform stays defined
	rows := [][]float64{{5, 1}, {5, 2}, {5, 3}}
	s := NewStandard()
	s.Fit(rows)

	out, err := s.Transform([]float64{5, 2})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 0 {
		t.Errorf("expected constant column to map to 0, got %f", out[0])
	}
}

func TestStandard_WidthMismatch(t *testing.T) {
	s := NewStandard()
	s.Fit([][]float64{{1, 2}})

	_, err := s.Transform([]float64{1})
	if !errors.Is(err, ErrWidthMismatch) {
		t.Errorf("expected ErrWidthMismatch, got %v", err)
	}
}

func TestMinMax_UnitRange(t *testing.T) {
	rows := [][]float64{{10}, {20}, {30}}
	s := NewMinMax()
	s.Fit(rows)

	out, err := s.Transform([]float64{10})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 0 {
		t.Errorf("expected min to map to 0, got %f", out[0])
	}

	out, _ = s.Transform([]float64{30})
	if out[0] != 1 {
		t.Errorf("expected max to map to 1, got %f", out[0])
	}

	out, _ = s.Transform([]float64{15})
	if math.Abs(out[0]-0.25) > 1e-9 {
		t.Errorf("expected 0.25, got %f", out[0])
	}
}

func TestMinMax_InverseColumnRoundTrip(t *testing.T) {
	rows := [][]float64{{10, 100}, {20, 300}}
	s := NewMinMax()
	s.Fit(rows)

	scaled, _ := s.Transform([]float64{15, 200})
	for j, sv := range scaled {
		v, err := s.InverseColumn(j, sv)
		if err != nil {
			t.Fatalf("inverse: %v", err)
		}
		want := []float64{15, 200}[j]
		if math.Abs(v-want) > 1e-9 {
			t.Errorf("column %d: expected %f back, got %f", j, want, v)
		}
	}
}

func TestMinMax_ConstantColumnMapsToZero(t *testing.T) {
	rows := [][]float64{{7}, {7}, {7}}
	s := NewMinMax()
	s.Fit(rows)

	out, err := s.Transform([]float64{7})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out[0] != 0 {
		t.Errorf("expected constant column to map to 0, got %f", out[0])
	}
}

func TestFitTransform_MatchesManual(t *testing.T) {
	rows := [][]float64{{1, 10}, {2, 20}, {3, 30}}

	s := NewMinMax()
	out, err := FitTransform(s, rows)
	if err != nil {
		t.Fatalf("fit transform: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	if out[0][0] != 0 || out[2][0] != 1 {
		t.Errorf("expected first column scaled to [0,1], got %v", out)
	}
}
