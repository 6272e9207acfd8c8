// Package pipeline wires feature engineering, scaling, model fitting and
// model persistence into the two forecasting lineages. The lineages share an
// interface but not semantics: the lagged lineage regresses the current price
// and uses the horizon only as a prediction loop bound, the windowed lineage
// shifts its training label by the horizon. They must never be swapped
// silently.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
	"crypto-price-lab/internal/timeseries"
)

// Params carries the per-invocation knobs shared by both lineages.
type Params struct {
	Token         string // prediction target token
	PastMinutes   int    // lookback window
	FutureMinutes int    // horizon
}

// WarmUp returns the warm-up size N in grid steps.
func (p Params) WarmUp() int {
	return p.PastMinutes * timeseries.PointsPerMinute
}

// HorizonSteps returns the future horizon in grid steps.
func (p Params) HorizonSteps() int {
	return p.FutureMinutes * timeseries.PointsPerMinute
}

// Strategy is one forecasting lineage operating on a prepared price matrix.
type Strategy interface {
	// Kind identifies the lineage.
	Kind() domain.StrategyKind

	// Interpolates reports whether the loader should linearly interpolate
	// resampling gaps (windowed lineage) or forward fill them (lagged).
	Interpolates() bool

	// Prepare derives any lineage-specific columns on the loaded matrix.
	Prepare(m *timeseries.PriceMatrix)

	// Train fits the scaler and model on the matrix and persists both as
	// two separate blob writes. A failure between the writes leaves an
	// inconsistent pair; no atomicity is provided.
	Train(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.TrainingRun, error)

	// Predict loads the latest persisted model/scaler pair and produces a
	// price prediction for the horizon.
	Predict(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.Prediction, error)

	// Evaluate loads the latest persisted pair and reports mean squared
	// error on the held-out tail of the matrix.
	Evaluate(ctx context.Context, m *timeseries.PriceMatrix, p Params) (float64, error)
}

// New returns the strategy for kind, backed by blobs for model persistence.
func New(kind domain.StrategyKind, blobs storage.BlobStore, log zerolog.Logger) (Strategy, error) {
	switch kind {
	case domain.StrategyForest:
		return NewForestStrategy(blobs, log), nil
	case domain.StrategyWindow:
		return NewWindowStrategy(blobs, log), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", storage.ErrInvalidInput, kind)
	}
}
