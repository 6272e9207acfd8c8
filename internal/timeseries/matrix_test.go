package timeseries

import (
	"math"
	"testing"
	"time"

	"crypto-price-lab/internal/domain"
)

func obsAt(token string, ts time.Time, price float64) *domain.PriceObservation {
	return &domain.PriceObservation{
		Token:     token,
		Trader:    domain.DefaultTrader,
		Timestamp: ts,
		Price:     price,
	}
}

func TestFromObservations_PivotShape(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{
		obsAt("WBNB", base, 310.5),
		obsAt("CAKE", base, 2.1),
		obsAt("WBNB", base.Add(10*time.Second), 311.0),
		obsAt("CAKE", base.Add(10*time.Second), 2.2),
	}

	m := FromObservations(obs)

	if m.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", m.Rows())
	}
	if len(m.Tokens) != 2 {
		t.Fatalf("expected 2 token columns, got %d", len(m.Tokens))
	}
	// Columns are sorted by token name
	if m.Tokens[0] != "CAKE" || m.Tokens[1] != "WBNB" {
		t.Errorf("expected sorted columns [CAKE WBNB], got %v", m.Tokens)
	}
	col, ok := m.Column("WBNB")
	if !ok {
		t.Fatal("expected WBNB column to exist")
	}
	if col[0] != 310.5 || col[1] != 311.0 {
		t.Errorf("expected WBNB column [310.5 311.0], got %v", col)
	}
}

func TestFromObservations_MissingCellIsNaN(t *testing.T) {
	// CAKE has no observation at the second timestamp → NaN cell
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{
		obsAt("WBNB", base, 310.5),
		obsAt("CAKE", base, 2.1),
		obsAt("WBNB", base.Add(10*time.Second), 311.0),
	}

	m := FromObservations(obs)

	col, _ := m.Column("CAKE")
	if !math.IsNaN(col[1]) {
		t.Errorf("expected NaN for missing CAKE cell, got %f", col[1])
	}
}

func TestFromObservations_DuplicateLastWins(t *testing.T) {
	// Two observations for the same (timestamp, token): the later one in
	// the slice wins, matching the store's ascending sort order.
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{
		obsAt("WBNB", base, 310.5),
		obsAt("WBNB", base, 312.0),
	}

	m := FromObservations(obs)

	if m.Rows() != 1 {
		t.Fatalf("expected 1 row, got %d", m.Rows())
	}
	col, _ := m.Column("WBNB")
	if col[0] != 312.0 {
		t.Errorf("expected last observation 312.0 to win, got %f", col[0])
	}
}

func TestFromObservations_Empty(t *testing.T) {
	m := FromObservations(nil)
	if !m.IsEmpty() {
		t.Error("expected empty matrix from no observations")
	}
}

func TestRow_TokenOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{
		obsAt("WBNB", base, 310.5),
		obsAt("CAKE", base, 2.1),
	}

	m := FromObservations(obs)
	row := m.Row(0)

	// Row values follow the sorted column order
	if row[0] != 2.1 || row[1] != 310.5 {
		t.Errorf("expected row [2.1 310.5], got %v", row)
	}
}

func TestSlice_SharesBacking(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{
		obsAt("WBNB", base, 1),
		obsAt("WBNB", base.Add(10*time.Second), 2),
		obsAt("WBNB", base.Add(20*time.Second), 3),
	}

	m := FromObservations(obs)
	s := m.Slice(1)

	if s.Rows() != 2 {
		t.Fatalf("expected 2 rows after slice, got %d", s.Rows())
	}
	col, _ := s.Column("WBNB")
	if col[0] != 2 || col[1] != 3 {
		t.Errorf("expected sliced column [2 3], got %v", col)
	}
}

func TestClone_Independent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	obs := []*domain.PriceObservation{obsAt("WBNB", base, 1)}

	m := FromObservations(obs)
	c := m.Clone()

	col, _ := c.Column("WBNB")
	col[0] = 99

	orig, _ := m.Column("WBNB")
	if orig[0] != 1 {
		t.Errorf("clone mutation leaked into original: got %f", orig[0])
	}
}

func TestSetColumn_KeepsTokensSorted(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := FromObservations([]*domain.PriceObservation{obsAt("WBNB", base, 1)})

	m.SetColumn("CAKE", []float64{2})

	if m.Tokens[0] != "CAKE" || m.Tokens[1] != "WBNB" {
		t.Errorf("expected sorted tokens after SetColumn, got %v", m.Tokens)
	}
}
