package storage

import (
	"context"
	"time"

	"crypto-price-lab/internal/domain"
)

// ObservationStore provides access to recorded price observations.
type ObservationStore interface {
	// GetByTraderSince retrieves all observations recorded by trader with
	// timestamp >= since, ordered by timestamp ASC. Returns ErrNoData when
	// the query matches nothing.
	GetByTraderSince(ctx context.Context, trader string, since time.Time) ([]*domain.PriceObservation, error)

	// InsertBulk adds multiple observations. Used by backfill only; the
	// forecasting pipelines never write observations.
	InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error
}

// BlobStore persists opaque model and scaler blobs under logical names.
// Versioning is most-recent-write-wins; there is no atomicity across the
// model/scaler pair of a training run.
type BlobStore interface {
	// Put stores blob under name as a new version.
	Put(ctx context.Context, name string, blob []byte) error

	// GetLatest retrieves the most recent version stored under name.
	// Returns ErrNotFound if no version exists.
	GetLatest(ctx context.Context, name string) ([]byte, error)
}

// TrainingRunStore records training-run provenance.
type TrainingRunStore interface {
	// Insert adds a completed run.
	Insert(ctx context.Context, run *domain.TrainingRun) error

	// GetLatest retrieves the most recent run for a strategy/token pair.
	// Returns ErrNotFound if none exists.
	GetLatest(ctx context.Context, strategy domain.StrategyKind, token string) (*domain.TrainingRun, error)

	// GetByStrategy retrieves all runs for a strategy, ordered by trained_at ASC.
	GetByStrategy(ctx context.Context, strategy domain.StrategyKind) ([]*domain.TrainingRun, error)
}
