package features

import (
	"math"

	"crypto-price-lab/internal/timeseries"
)

// Build derives the feature matrix from a price matrix with warm-up size n:
// per token, n lag columns, one rolling mean over a window of n, and one
// rate-of-change column. The first n rows are dropped (insufficient history)
// and residual gaps are filled forward then backward.
//
// When n meets or exceeds the available rows the result is empty; no error
// is raised. Callers that need a non-empty matrix must check IsEmpty.
func Build(m *timeseries.PriceMatrix, n int) *Matrix {
	out := &Matrix{
		Tokens:  m.Tokens,
		ByToken: make(map[string]*TokenFeatures, len(m.Tokens)),
	}

	rows := m.Rows()
	if n <= 0 || n >= rows {
		for _, tok := range m.Tokens {
			out.ByToken[tok] = &TokenFeatures{Lags: make([][]float64, maxInt(n, 0))}
		}
		return out
	}

	out.Index = m.Index[n:]

	for _, tok := range m.Tokens {
		col, _ := m.Column(tok)

		tf := &TokenFeatures{
			Lags:          make([][]float64, n),
			MovingAverage: rollingMean(col, n)[n:],
			RateOfChange:  pctChange(col)[n:],
		}
		for lag := 1; lag <= n; lag++ {
			tf.Lags[lag-1] = shift(col, lag)[n:]
		}

		// Residual gaps after the trim (leading NaNs from the rolling
		// window or pct change) resolve by directional fill.
		for _, lagCol := range tf.Lags {
			fillBoth(lagCol)
		}
		fillBoth(tf.MovingAverage)
		fillBoth(tf.RateOfChange)

		out.ByToken[tok] = tf
	}

	return out
}

// shift returns col displaced by lag steps: result[i] = col[i-lag],
// NaN where no history exists.
func shift(col []float64, lag int) []float64 {
	out := make([]float64, len(col))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
		} else {
			out[i] = col[i-lag]
		}
	}
	return out
}

// rollingMean returns the trailing mean over a window of size n, NaN until a
// full window is available. Windows containing a NaN yield NaN.
func rollingMean(col []float64, n int) []float64 {
	out := make([]float64, len(col))
	sum := 0.0
	nans := 0
	for i, v := range col {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}
		if i >= n {
			if prev := col[i-n]; math.IsNaN(prev) {
				nans--
			} else {
				sum -= prev
			}
		}
		if i >= n-1 && nans == 0 {
			out[i] = sum / float64(n)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// pctChange returns the period-over-period fractional change, NaN on the
// first row and wherever the previous value is zero.
func pctChange(col []float64) []float64 {
	out := make([]float64, len(col))
	out[0] = math.NaN()
	for i := 1; i < len(col); i++ {
		prev := col[i-1]
		if prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = col[i]/prev - 1
	}
	return out
}

func fillBoth(col []float64) {
	timeseries.FillForward(col)
	timeseries.FillBackward(col)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
