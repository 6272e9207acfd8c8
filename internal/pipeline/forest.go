package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/features"
	"crypto-price-lab/internal/model"
	"crypto-price-lab/internal/model/forest"
	"crypto-price-lab/internal/scaler"
	"crypto-price-lab/internal/storage"
	"crypto-price-lab/internal/timeseries"
)

// ForestStrategy is the lagged-feature regression lineage: engineered lag
// features, a z-score scaler fit on the full training set, and a bagged tree
// ensemble predicting the target token's same-timestep price.
type ForestStrategy struct {
	blobs  storage.BlobStore
	config forest.Config
	log    zerolog.Logger
}

// NewForestStrategy creates the lineage with the default ensemble shape.
func NewForestStrategy(blobs storage.BlobStore, log zerolog.Logger) *ForestStrategy {
	return &ForestStrategy{
		blobs:  blobs,
		config: forest.DefaultConfig(),
		log:    log.With().Str("strategy", string(domain.StrategyForest)).Logger(),
	}
}

// WithConfig overrides the ensemble shape. Used by tests for small forests.
func (s *ForestStrategy) WithConfig(cfg forest.Config) *ForestStrategy {
	s.config = cfg
	return s
}

// Kind identifies the lineage.
func (s *ForestStrategy) Kind() domain.StrategyKind {
	return domain.StrategyForest
}

// Interpolates is false: this lineage forward fills resampling gaps.
func (s *ForestStrategy) Interpolates() bool {
	return false
}

// Prepare is a no-op; the lagged lineage consumes raw price columns only.
func (s *ForestStrategy) Prepare(_ *timeseries.PriceMatrix) {}

// Train engineers features with warm-up N, fits the scaler on the full
// training set, aligns the target by dropping the first N rows, fits the
// ensemble, and persists model then scaler as two blob writes.
func (s *ForestStrategy) Train(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.TrainingRun, error) {
	start := time.Now()

	n := p.WarmUp()
	target, feats, err := s.targetAndFeatures(m, p.Token, n)
	if err != nil {
		return nil, err
	}

	sc := scaler.NewStandard()
	X, err := scaler.FitTransform(sc, feats.Values())
	if err != nil {
		return nil, fmt.Errorf("scale training set: %w", err)
	}

	reg := forest.New(s.config)
	if err := reg.Fit(X, target); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	s.log.Info().
		Int("samples", len(X)).
		Int("features", feats.Width()).
		Msg("forest fitted")

	if err := persistPair(ctx, s.blobs, s.Kind(), reg, sc); err != nil {
		return nil, err
	}

	return &domain.TrainingRun{
		RunID:        uuid.NewString(),
		Strategy:     s.Kind(),
		Token:        p.Token,
		SampleCount:  len(X),
		FeatureCount: feats.Width(),
		TrainedAt:    time.Now().UTC(),
		DurationMs:   time.Since(start).Milliseconds(),
	}, nil
}

// Predict loads the latest model/scaler pair and runs the batch pseudo-
// backtest: rows N through (rows − horizon) each produce a prediction and
// the last one is returned. The horizon bounds the loop only; it never feeds
// the features, so it merely selects which trailing predictions are
// discarded. Kept as-is deliberately; see the design notes.
func (s *ForestStrategy) Predict(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.Prediction, error) {
	reg, sc, err := s.loadPair(ctx)
	if err != nil {
		return nil, err
	}

	n := p.WarmUp()
	feats := features.Build(m, n)

	h := p.HorizonSteps()
	total := feats.Rows() - h

	var last float64
	recorded := false
	for i := n; i < total; i++ {
		if i+h >= feats.Rows() {
			continue
		}
		x, err := sc.Transform(feats.Row(i))
		if err != nil {
			return nil, fmt.Errorf("transform row %d: %w", i, err)
		}
		last = reg.Predict(x)
		recorded = true
	}
	if !recorded {
		return nil, fmt.Errorf("%w: no rows inside prediction bounds", storage.ErrNoData)
	}

	return &domain.Prediction{
		Token:          p.Token,
		Strategy:       s.Kind(),
		Price:          last,
		HorizonMinutes: p.FutureMinutes,
		PredictedAt:    time.Now().UTC(),
	}, nil
}

// Evaluate loads the latest pair and reports MSE on the most recent 20% of
// aligned feature/target rows.
func (s *ForestStrategy) Evaluate(ctx context.Context, m *timeseries.PriceMatrix, p Params) (float64, error) {
	reg, sc, err := s.loadPair(ctx)
	if err != nil {
		return 0, err
	}

	n := p.WarmUp()
	target, feats, err := s.targetAndFeatures(m, p.Token, n)
	if err != nil {
		return 0, err
	}

	split := int(0.8 * float64(feats.Rows()))
	if split >= feats.Rows() {
		return 0, fmt.Errorf("%w: nothing held out", storage.ErrNoData)
	}

	predicted := make([]float64, 0, feats.Rows()-split)
	actual := make([]float64, 0, feats.Rows()-split)
	for i := split; i < feats.Rows(); i++ {
		x, err := sc.Transform(feats.Row(i))
		if err != nil {
			return 0, fmt.Errorf("transform row %d: %w", i, err)
		}
		predicted = append(predicted, reg.Predict(x))
		actual = append(actual, target[i])
	}
	return MeanSquaredError(actual, predicted)
}

// targetAndFeatures builds the feature matrix and the N-trimmed target
// column, validating alignment.
func (s *ForestStrategy) targetAndFeatures(m *timeseries.PriceMatrix, token string, n int) ([]float64, *features.Matrix, error) {
	col, ok := m.Column(token)
	if !ok {
		return nil, nil, fmt.Errorf("%w: token %q not in price matrix", storage.ErrInvalidInput, token)
	}

	feats := features.Build(m, n)
	if feats.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: warm-up %d leaves no feature rows", storage.ErrNoData, n)
	}

	target := col[n:]
	if len(target) != feats.Rows() {
		return nil, nil, fmt.Errorf("target/feature misalignment: %d vs %d rows", len(target), feats.Rows())
	}
	return target, feats, nil
}

// loadPair fetches and decodes the latest persisted model and scaler. A
// mismatched pair is undetectable here; the caller inherits whatever the
// last training run left behind.
func (s *ForestStrategy) loadPair(ctx context.Context) (*forest.Forest, *scaler.Standard, error) {
	blob, err := s.blobs.GetLatest(ctx, domain.ModelBlobName(s.Kind()))
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	var reg forest.Forest
	if err := model.Decode(blob, &reg); err != nil {
		return nil, nil, err
	}

	blob, err = s.blobs.GetLatest(ctx, domain.ScalerBlobName(s.Kind()))
	if err != nil {
		return nil, nil, fmt.Errorf("load scaler: %w", err)
	}
	var sc scaler.Standard
	if err := model.Decode(blob, &sc); err != nil {
		return nil, nil, err
	}

	return &reg, &sc, nil
}

var _ Strategy = (*ForestStrategy)(nil)
