package timeseries

import (
	"math"
	"time"
)

// Resample projects the matrix onto a uniform grid from the first to the
// last index timestamp, stepping by `step`. Cells between observations are
// linearly interpolated in time; cells before the first observation of a
// column stay NaN for a later fill pass.
func Resample(m *PriceMatrix, step time.Duration) *PriceMatrix {
	if m.IsEmpty() || step <= 0 {
		return m
	}

	start := m.Index[0]
	end := m.Index[len(m.Index)-1]

	var grid []time.Time
	for ts := start; !ts.After(end); ts = ts.Add(step) {
		grid = append(grid, ts)
	}

	out := NewPriceMatrix(grid, m.Tokens)
	for _, tok := range m.Tokens {
		src, _ := m.Column(tok)
		dst, _ := out.Column(tok)
		interpolateOnto(m.Index, src, grid, dst)
	}
	return out
}

// interpolateOnto fills dst with values of (index, src) evaluated at grid
// timestamps by linear interpolation. Grid points outside the span of known
// src values remain NaN.
func interpolateOnto(index []time.Time, src []float64, grid []time.Time, dst []float64) {
	// Collect the known points once; NaN cells carry no information.
	var knownTs []int64
	var knownVal []float64
	for i, v := range src {
		if !math.IsNaN(v) {
			knownTs = append(knownTs, index[i].UnixMilli())
			knownVal = append(knownVal, v)
		}
	}
	if len(knownTs) == 0 {
		return
	}

	k := 0 // index of the known point at or before the current grid point
	for i, ts := range grid {
		t := ts.UnixMilli()
		if t < knownTs[0] || t > knownTs[len(knownTs)-1] {
			continue
		}
		for k+1 < len(knownTs) && knownTs[k+1] <= t {
			k++
		}
		if knownTs[k] == t || k+1 >= len(knownTs) {
			dst[i] = knownVal[k]
			continue
		}
		t0, t1 := knownTs[k], knownTs[k+1]
		v0, v1 := knownVal[k], knownVal[k+1]
		frac := float64(t-t0) / float64(t1-t0)
		dst[i] = v0 + frac*(v1-v0)
	}
}

// ForwardFill replaces each NaN cell with the nearest preceding non-NaN
// value of the same column. Leading NaNs are left untouched.
func ForwardFill(m *PriceMatrix) {
	for _, tok := range m.Tokens {
		col, _ := m.Column(tok)
		FillForward(col)
	}
}

// BackwardFill replaces each NaN cell with the nearest following non-NaN
// value of the same column. Trailing NaNs are left untouched.
func BackwardFill(m *PriceMatrix) {
	for _, tok := range m.Tokens {
		col, _ := m.Column(tok)
		FillBackward(col)
	}
}

// FillForward fills NaN gaps in place with the last seen value. Idempotent.
func FillForward(col []float64) {
	last := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = last
		} else {
			last = v
		}
	}
}

// FillBackward fills NaN gaps in place with the next seen value. Idempotent.
func FillBackward(col []float64) {
	next := math.NaN()
	for i := len(col) - 1; i >= 0; i-- {
		if math.IsNaN(col[i]) {
			col[i] = next
		} else {
			next = col[i]
		}
	}
}
