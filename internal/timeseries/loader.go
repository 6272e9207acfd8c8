package timeseries

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crypto-price-lab/internal/storage"
)

// PointsPerMinute is the observation cadence the trading agent writes at:
// one observation per token every 10 seconds.
const PointsPerMinute = 6

// GridStep is the uniform resampling step matching PointsPerMinute.
const GridStep = 10 * time.Second

// Loader fetches observations for one trader and shapes them into a
// PriceMatrix. It holds no state between calls.
type Loader struct {
	store storage.ObservationStore
	log   zerolog.Logger
}

// NewLoader creates a Loader reading from store.
func NewLoader(store storage.ObservationStore, log zerolog.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load fetches all observations for trader newer than pastMinutes and pivots
// them into a resampled matrix. When interpolate is true gaps on the grid are
// linearly interpolated (windowed lineage); otherwise they are forward filled
// (lagged lineage). Returns storage.ErrNoData when the query matches nothing.
func (l *Loader) Load(ctx context.Context, trader string, pastMinutes int, interpolate bool) (*PriceMatrix, error) {
	since := time.Now().UTC().Add(-time.Duration(pastMinutes) * time.Minute)

	obs, err := l.store.GetByTraderSince(ctx, trader, since)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	m := FromObservations(obs)
	if m.IsEmpty() {
		return nil, storage.ErrNoData
	}

	l.log.Debug().
		Str("trader", trader).
		Int("observations", len(obs)).
		Int("tokens", len(m.Tokens)).
		Msg("pivoted observations")

	m = Resample(m, GridStep)
	if interpolate {
		// Interpolation already happened on the grid; only the edges
		// outside the known span remain NaN.
		ForwardFill(m)
		BackwardFill(m)
	} else {
		ForwardFill(m)
	}

	l.log.Info().
		Str("trader", trader).
		Int("rows", m.Rows()).
		Int("tokens", len(m.Tokens)).
		Msg("price matrix ready")

	return m, nil
}
