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
	"crypto-price-lab/internal/model/window"
	"crypto-price-lab/internal/scaler"
	"crypto-price-lab/internal/storage"
	"crypto-price-lab/internal/timeseries"
)

// WindowStrategy is the windowed-sequence regression lineage: the whole
// matrix (prices plus technical indicators) is min-max scaled, samples are
// flattened look-back windows, and the label is the target token's scaled
// price horizon steps past the window end. Unlike the lagged lineage, the
// horizon shifts the label here.
type WindowStrategy struct {
	blobs  storage.BlobStore
	config window.Config
	log    zerolog.Logger
}

// NewWindowStrategy creates the lineage with the default network shape.
func NewWindowStrategy(blobs storage.BlobStore, log zerolog.Logger) *WindowStrategy {
	return &WindowStrategy{
		blobs:  blobs,
		config: window.DefaultConfig(),
		log:    log.With().Str("strategy", string(domain.StrategyWindow)).Logger(),
	}
}

// WithConfig overrides the network shape. Used by tests for fast training.
func (s *WindowStrategy) WithConfig(cfg window.Config) *WindowStrategy {
	s.config = cfg
	return s
}

// Kind identifies the lineage.
func (s *WindowStrategy) Kind() domain.StrategyKind {
	return domain.StrategyWindow
}

// Interpolates is true: this lineage linearly interpolates resampling gaps.
func (s *WindowStrategy) Interpolates() bool {
	return true
}

// Prepare appends per-token SMA, RSI and MACD columns and resolves their
// leading warm-up gaps by directional fill so scaling stays defined.
func (s *WindowStrategy) Prepare(m *timeseries.PriceMatrix) {
	features.AppendIndicators(m)
	timeseries.ForwardFill(m)
	timeseries.BackwardFill(m)
}

// Train scales the matrix, builds horizon-shifted window samples, fits the
// network on the first 80% (time-causal split), and persists network then
// scaler as two blob writes.
func (s *WindowStrategy) Train(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.TrainingRun, error) {
	start := time.Now()

	sc, X, y, err := s.prepareSamples(m, p)
	if err != nil {
		return nil, err
	}

	split := int(0.8 * float64(len(X)))
	if split < 1 {
		split = len(X)
	}
	trainX, trainY := X[:split], y[:split]

	net := window.New(s.config, s.log)
	if err := net.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("fit network: %w", err)
	}

	s.log.Info().
		Int("samples", len(trainX)).
		Int("window_width", len(trainX[0])).
		Msg("network fitted")

	if err := persistPair(ctx, s.blobs, s.Kind(), net, sc); err != nil {
		return nil, err
	}

	return &domain.TrainingRun{
		RunID:        uuid.NewString(),
		Strategy:     s.Kind(),
		Token:        p.Token,
		SampleCount:  len(trainX),
		FeatureCount: len(trainX[0]),
		TrainedAt:    time.Now().UTC(),
		DurationMs:   time.Since(start).Milliseconds(),
	}, nil
}

// Predict loads the latest pair, rebuilds the scaled windows, evaluates the
// most recent window, and inverse-transforms the output through the target
// column's min-max parameters.
func (s *WindowStrategy) Predict(ctx context.Context, m *timeseries.PriceMatrix, p Params) (*domain.Prediction, error) {
	net, sc, err := s.loadPair(ctx)
	if err != nil {
		return nil, err
	}

	// Windows must be rebuilt with the persisted scaler, not a fresh fit:
	// the network's inputs are only meaningful in that scaler's space.
	X, _, err := s.samplesWithScaler(sc, m, p)
	if err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: no complete windows", storage.ErrNoData)
	}

	targetIdx, err := columnIndex(m, p.Token)
	if err != nil {
		return nil, err
	}

	scaled := net.Predict(X[len(X)-1])
	price, err := sc.InverseColumn(targetIdx, scaled)
	if err != nil {
		return nil, fmt.Errorf("inverse transform: %w", err)
	}

	return &domain.Prediction{
		Token:          p.Token,
		Strategy:       s.Kind(),
		Price:          price,
		HorizonMinutes: p.FutureMinutes,
		PredictedAt:    time.Now().UTC(),
	}, nil
}

// Evaluate loads the latest pair and reports MSE, in price space, on the
// held-out final 20% of windows.
func (s *WindowStrategy) Evaluate(ctx context.Context, m *timeseries.PriceMatrix, p Params) (float64, error) {
	net, sc, err := s.loadPair(ctx)
	if err != nil {
		return 0, err
	}

	X, y, err := s.samplesWithScaler(sc, m, p)
	if err != nil {
		return 0, err
	}

	split := int(0.8 * float64(len(X)))
	if split >= len(X) {
		return 0, fmt.Errorf("%w: nothing held out", storage.ErrNoData)
	}

	targetIdx, err := columnIndex(m, p.Token)
	if err != nil {
		return 0, err
	}

	predicted := make([]float64, 0, len(X)-split)
	actual := make([]float64, 0, len(X)-split)
	for i := split; i < len(X); i++ {
		pr, err := sc.InverseColumn(targetIdx, net.Predict(X[i]))
		if err != nil {
			return 0, fmt.Errorf("inverse transform: %w", err)
		}
		ac, err := sc.InverseColumn(targetIdx, y[i])
		if err != nil {
			return 0, fmt.Errorf("inverse transform: %w", err)
		}
		predicted = append(predicted, pr)
		actual = append(actual, ac)
	}
	return MeanSquaredError(actual, predicted)
}

// prepareSamples fits a fresh min-max scaler on the whole matrix (the
// original fits on the full set, training leakage included) and builds the
// windowed samples.
func (s *WindowStrategy) prepareSamples(m *timeseries.PriceMatrix, p Params) (*scaler.MinMax, [][]float64, []float64, error) {
	if m.IsEmpty() {
		return nil, nil, nil, fmt.Errorf("%w: empty price matrix", storage.ErrNoData)
	}

	sc := scaler.NewMinMax()
	scaled, err := scaledRows(sc, m, true)
	if err != nil {
		return nil, nil, nil, err
	}

	X, y, err := s.buildWindows(m, scaled, p)
	if err != nil {
		return nil, nil, nil, err
	}
	return sc, X, y, nil
}

// samplesWithScaler builds windows using an already-fitted scaler.
func (s *WindowStrategy) samplesWithScaler(sc *scaler.MinMax, m *timeseries.PriceMatrix, p Params) ([][]float64, []float64, error) {
	if m.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: empty price matrix", storage.ErrNoData)
	}

	scaled, err := scaledRows(sc, m, false)
	if err != nil {
		return nil, nil, err
	}

	return s.buildWindows(m, scaled, p)
}

// buildWindows slices the scaled rows into flattened look-back windows with
// a horizon-shifted label taken from the target token's column.
func (s *WindowStrategy) buildWindows(m *timeseries.PriceMatrix, scaled [][]float64, p Params) ([][]float64, []float64, error) {
	targetIdx, err := columnIndex(m, p.Token)
	if err != nil {
		return nil, nil, err
	}

	lookBack := p.WarmUp()
	h := p.HorizonSteps()
	width := len(m.Tokens)

	count := len(scaled) - lookBack - h
	if count <= 0 {
		return nil, nil, nil
	}

	X := make([][]float64, 0, count)
	y := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		sample := make([]float64, 0, lookBack*width)
		for r := i; r < i+lookBack; r++ {
			sample = append(sample, scaled[r]...)
		}
		X = append(X, sample)
		y = append(y, scaled[i+lookBack+h][targetIdx])
	}
	return X, y, nil
}

// loadPair fetches and decodes the latest persisted network and scaler.
func (s *WindowStrategy) loadPair(ctx context.Context) (*window.Network, *scaler.MinMax, error) {
	blob, err := s.blobs.GetLatest(ctx, domain.ModelBlobName(s.Kind()))
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	var net window.Network
	if err := model.Decode(blob, &net); err != nil {
		return nil, nil, err
	}
	net.SetLogger(s.log)

	blob, err = s.blobs.GetLatest(ctx, domain.ScalerBlobName(s.Kind()))
	if err != nil {
		return nil, nil, fmt.Errorf("load scaler: %w", err)
	}
	var sc scaler.MinMax
	if err := model.Decode(blob, &sc); err != nil {
		return nil, nil, err
	}

	return &net, &sc, nil
}

// scaledRows flattens the matrix to row vectors and scales them, fitting
// first when fit is true.
func scaledRows(sc *scaler.MinMax, m *timeseries.PriceMatrix, fit bool) ([][]float64, error) {
	rows := make([][]float64, m.Rows())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	if fit {
		return scaler.FitTransform(sc, rows)
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		t, err := sc.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("scale row %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// columnIndex returns the position of token in the matrix column order.
func columnIndex(m *timeseries.PriceMatrix, token string) (int, error) {
	for i, tok := range m.Tokens {
		if tok == token {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: token %q not in price matrix", storage.ErrInvalidInput, token)
}

var _ Strategy = (*WindowStrategy)(nil)
