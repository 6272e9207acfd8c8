package timeseries

import (
	"math"
	"sort"
	"time"

	"crypto-price-lab/internal/domain"
)

// PriceMatrix is a time-indexed frame with one column per token. Gaps are
// represented as NaN until resolved by interpolation or fill. Matrices are
// ephemeral: regenerated on every invocation, never persisted.
type PriceMatrix struct {
	Index  []time.Time // sorted ascending, no duplicates
	Tokens []string    // column order, sorted ascending
	cols   map[string][]float64
}

// NewPriceMatrix creates an empty matrix with the given index and token set.
// All cells start as NaN.
func NewPriceMatrix(index []time.Time, tokens []string) *PriceMatrix {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)

	cols := make(map[string][]float64, len(sorted))
	for _, tok := range sorted {
		col := make([]float64, len(index))
		for i := range col {
			col[i] = math.NaN()
		}
		cols[tok] = col
	}

	return &PriceMatrix{Index: index, Tokens: sorted, cols: cols}
}

// FromObservations pivots long-format observations into a wide matrix:
// one row per distinct timestamp, one column per distinct token. For
// duplicate (timestamp, token) pairs the last observation wins, matching
// the store's ascending sort order.
func FromObservations(obs []*domain.PriceObservation) *PriceMatrix {
	if len(obs) == 0 {
		return &PriceMatrix{cols: map[string][]float64{}}
	}

	type cell struct {
		ts    time.Time
		token string
	}
	values := make(map[cell]float64)
	tsSet := make(map[time.Time]struct{})
	tokSet := make(map[string]struct{})

	for _, o := range obs {
		ts := o.Timestamp.UTC().Truncate(time.Second)
		values[cell{ts: ts, token: o.Token}] = o.Price
		tsSet[ts] = struct{}{}
		tokSet[o.Token] = struct{}{}
	}

	index := make([]time.Time, 0, len(tsSet))
	for ts := range tsSet {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	tokens := make([]string, 0, len(tokSet))
	for tok := range tokSet {
		tokens = append(tokens, tok)
	}

	m := NewPriceMatrix(index, tokens)
	for i, ts := range index {
		for _, tok := range m.Tokens {
			if v, ok := values[cell{ts: ts, token: tok}]; ok {
				m.cols[tok][i] = v
			}
		}
	}
	return m
}

// Rows returns the number of rows.
func (m *PriceMatrix) Rows() int {
	return len(m.Index)
}

// IsEmpty reports whether the matrix has no rows or no columns.
func (m *PriceMatrix) IsEmpty() bool {
	return len(m.Index) == 0 || len(m.Tokens) == 0
}

// Column returns the values for a token. The returned slice is the backing
// array; callers must not mutate it.
func (m *PriceMatrix) Column(token string) ([]float64, bool) {
	col, ok := m.cols[token]
	return col, ok
}

// SetColumn adds or replaces a column. The values slice must match the index
// length. New tokens keep the column order sorted.
func (m *PriceMatrix) SetColumn(token string, values []float64) {
	if _, exists := m.cols[token]; !exists {
		m.Tokens = append(m.Tokens, token)
		sort.Strings(m.Tokens)
	}
	m.cols[token] = values
}

// Slice returns a view of the matrix from row `from` (inclusive) onward.
// Columns share backing arrays with the receiver.
func (m *PriceMatrix) Slice(from int) *PriceMatrix {
	if from < 0 {
		from = 0
	}
	if from > len(m.Index) {
		from = len(m.Index)
	}

	cols := make(map[string][]float64, len(m.cols))
	for tok, col := range m.cols {
		cols[tok] = col[from:]
	}
	return &PriceMatrix{
		Index:  m.Index[from:],
		Tokens: m.Tokens,
		cols:   cols,
	}
}

// Clone returns a deep copy.
func (m *PriceMatrix) Clone() *PriceMatrix {
	index := make([]time.Time, len(m.Index))
	copy(index, m.Index)

	tokens := make([]string, len(m.Tokens))
	copy(tokens, m.Tokens)

	cols := make(map[string][]float64, len(m.cols))
	for tok, col := range m.cols {
		c := make([]float64, len(col))
		copy(c, col)
		cols[tok] = c
	}
	return &PriceMatrix{Index: index, Tokens: tokens, cols: cols}
}

// Row returns the values of all columns at row i in token order.
func (m *PriceMatrix) Row(i int) []float64 {
	row := make([]float64, len(m.Tokens))
	for j, tok := range m.Tokens {
		row[j] = m.cols[tok][i]
	}
	return row
}
