package clickhouse

import (
	"context"
	"fmt"
	"time"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

// ObservationStore implements storage.ObservationStore using ClickHouse.
type ObservationStore struct {
	conn *Conn
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(conn *Conn) *ObservationStore {
	return &ObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// EnsureSchema creates the price_observations table if it does not exist.
func (s *ObservationStore) EnsureSchema(ctx context.Context) error {
	err := s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_observations (
			trader_name   String,
			token_name    String,
			timestamp_ms  UInt64,
			price         Float64
		) ENGINE = MergeTree()
		ORDER BY (trader_name, token_name, timestamp_ms)
		SETTINGS index_granularity = 8192
	`)
	if err != nil {
		return fmt.Errorf("create price_observations: %w", err)
	}
	return nil
}

// InsertBulk adds multiple observations as one batch.
func (s *ObservationStore) InsertBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (trader_name, token_name, timestamp_ms, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range obs {
		if o == nil || o.Token == "" || o.Trader == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(o.Trader, o.Token, uint64(o.Timestamp.UnixMilli()), o.Price)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTraderSince retrieves observations for trader with timestamp >= since,
// ordered by timestamp ASC. Returns ErrNoData when nothing matches.
func (s *ObservationStore) GetByTraderSince(ctx context.Context, trader string, since time.Time) ([]*domain.PriceObservation, error) {
	query := `
		SELECT trader_name, token_name, timestamp_ms, price
		FROM price_observations
		WHERE trader_name = ? AND timestamp_ms >= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, trader, uint64(since.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var obs []*domain.PriceObservation
	for rows.Next() {
		var o domain.PriceObservation
		var timestampMs uint64

		if err := rows.Scan(&o.Trader, &o.Token, &timestampMs, &o.Price); err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}

		o.Timestamp = time.UnixMilli(int64(timestampMs)).UTC()
		obs = append(obs, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observation rows: %w", err)
	}
	if len(obs) == 0 {
		return nil, storage.ErrNoData
	}

	return obs, nil
}
