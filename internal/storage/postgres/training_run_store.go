package postgres

import (
	"context"
	"fmt"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

// TrainingRunStore implements storage.TrainingRunStore using PostgreSQL.
type TrainingRunStore struct {
	pool *Pool
}

// NewTrainingRunStore creates a new TrainingRunStore.
func NewTrainingRunStore(pool *Pool) *TrainingRunStore {
	return &TrainingRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TrainingRunStore = (*TrainingRunStore)(nil)

// EnsureSchema creates the training_runs table if it does not exist.
func (s *TrainingRunStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS training_runs (
			run_id        TEXT PRIMARY KEY,
			strategy      TEXT NOT NULL,
			token         TEXT NOT NULL,
			sample_count  INTEGER NOT NULL,
			feature_count INTEGER NOT NULL,
			held_out_mse  DOUBLE PRECISION,
			trained_at    TIMESTAMPTZ NOT NULL,
			duration_ms   BIGINT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create training_runs: %w", err)
	}
	return nil
}

// Insert adds a completed run. Returns ErrDuplicateKey if run_id exists.
func (s *TrainingRunStore) Insert(ctx context.Context, run *domain.TrainingRun) error {
	if run == nil || run.RunID == "" || !run.Strategy.Valid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO training_runs (
			run_id, strategy, token, sample_count, feature_count,
			held_out_mse, trained_at, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID, string(run.Strategy), run.Token, run.SampleCount, run.FeatureCount,
		run.HeldOutMSE, run.TrainedAt, run.DurationMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert training run: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent run for a strategy/token pair.
func (s *TrainingRunStore) GetLatest(ctx context.Context, strategy domain.StrategyKind, token string) (*domain.TrainingRun, error) {
	query := `
		SELECT run_id, strategy, token, sample_count, feature_count,
		       held_out_mse, trained_at, duration_ms
		FROM training_runs
		WHERE strategy = $1 AND token = $2
		ORDER BY trained_at DESC
		LIMIT 1
	`

	run, err := scanRun(s.pool.QueryRow(ctx, query, string(strategy), token))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query latest training run: %w", err)
	}
	return run, nil
}

// GetByStrategy retrieves all runs for a strategy, ordered by trained_at ASC.
func (s *TrainingRunStore) GetByStrategy(ctx context.Context, strategy domain.StrategyKind) ([]*domain.TrainingRun, error) {
	query := `
		SELECT run_id, strategy, token, sample_count, feature_count,
		       held_out_mse, trained_at, duration_ms
		FROM training_runs
		WHERE strategy = $1
		ORDER BY trained_at ASC
	`

	rows, err := s.pool.Query(ctx, query, string(strategy))
	if err != nil {
		return nil, fmt.Errorf("query training runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan training run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training runs: %w", err)
	}
	return runs, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.TrainingRun, error) {
	var run domain.TrainingRun
	var strategy string

	err := row.Scan(
		&run.RunID, &strategy, &run.Token, &run.SampleCount, &run.FeatureCount,
		&run.HeldOutMSE, &run.TrainedAt, &run.DurationMs,
	)
	if err != nil {
		return nil, err
	}

	run.Strategy = domain.StrategyKind(strategy)
	return &run, nil
}
