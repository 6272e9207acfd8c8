package pipeline

import (
	"errors"
	"testing"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/logging"
	"crypto-price-lab/internal/storage"
	"crypto-price-lab/internal/storage/memory"
)

func TestNew_KnownKinds(t *testing.T) {
	blobs := memory.NewBlobStore()
	log := logging.New("test", "disabled")

	s, err := New(domain.StrategyForest, blobs, log)
	if err != nil {
		t.Fatalf("forest: %v", err)
	}
	if s.Kind() != domain.StrategyForest || s.Interpolates() {
		t.Error("forest lineage must not interpolate")
	}

	s, err = New(domain.StrategyWindow, blobs, log)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if s.Kind() != domain.StrategyWindow || !s.Interpolates() {
		t.Error("window lineage must interpolate")
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(domain.StrategyKind("lstm"), memory.NewBlobStore(), logging.New("test", "disabled"))
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParams_GridConversions(t *testing.T) {
	p := Params{PastMinutes: 180, FutureMinutes: 60}

	// 6 grid points per minute
	if p.WarmUp() != 1080 {
		t.Errorf("expected warm-up 1080 steps, got %d", p.WarmUp())
	}
	if p.HorizonSteps() != 360 {
		t.Errorf("expected horizon 360 steps, got %d", p.HorizonSteps())
	}
}

func TestMeanSquaredError(t *testing.T) {
	mse, err := MeanSquaredError([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("mse: %v", err)
	}
	if mse != 0 {
		t.Errorf("expected 0 for identical vectors, got %f", mse)
	}

	mse, err = MeanSquaredError([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("mse: %v", err)
	}
	if mse != 12.5 {
		t.Errorf("expected (9+16)/2 = 12.5, got %f", mse)
	}

	if _, err := MeanSquaredError(nil, nil); err == nil {
		t.Error("expected an error on empty inputs")
	}
	if _, err := MeanSquaredError([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected an error on misaligned inputs")
	}
}
