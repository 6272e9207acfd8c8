// Package features derives model inputs from a price matrix: per-token lag
// columns, a rolling mean, and a rate-of-change column, concatenated across
// tokens in token order.
package features

import "time"

// TokenFeatures holds the derived columns for one token. Lags[k] is the
// price shifted by k+1 steps; MovingAverage is the rolling mean over the
// warm-up window; RateOfChange is the period-over-period fractional change.
type TokenFeatures struct {
	Lags          [][]float64
	MovingAverage []float64
	RateOfChange  []float64
}

// Matrix is the engineered feature frame. Rows align 1:1 by timestamp with
// the warm-up-trimmed price matrix. Column layout per token, in token order:
// lag_1..lag_N, moving_average, rate_of_change.
type Matrix struct {
	Index   []time.Time
	Tokens  []string
	ByToken map[string]*TokenFeatures
}

// Rows returns the number of feature rows.
func (m *Matrix) Rows() int {
	return len(m.Index)
}

// Width returns the flattened column count: K tokens × (N lags + 2).
func (m *Matrix) Width() int {
	if len(m.Tokens) == 0 {
		return 0
	}
	tf := m.ByToken[m.Tokens[0]]
	return len(m.Tokens) * (len(tf.Lags) + 2)
}

// IsEmpty reports whether the matrix has no rows.
func (m *Matrix) IsEmpty() bool {
	return len(m.Index) == 0
}

// Row flattens row i into a single feature vector in column layout order.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, 0, m.Width())
	for _, tok := range m.Tokens {
		tf := m.ByToken[tok]
		for _, lag := range tf.Lags {
			row = append(row, lag[i])
		}
		row = append(row, tf.MovingAverage[i], tf.RateOfChange[i])
	}
	return row
}

// Values flattens the whole matrix into row-major vectors for model fitting.
func (m *Matrix) Values() [][]float64 {
	rows := make([][]float64, m.Rows())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}
