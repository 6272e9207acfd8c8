package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data []*domain.PriceObservation
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{}
}

// InsertBulk adds multiple observations.
func (s *ObservationStore) InsertBulk(_ context.Context, obs []*domain.PriceObservation) error {
	for _, o := range obs {
		if o == nil || o.Token == "" || o.Trader == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range obs {
		obsCopy := *o
		s.data = append(s.data, &obsCopy)
	}
	return nil
}

// GetByTraderSince retrieves observations for trader with timestamp >= since,
// ordered by timestamp ASC. Returns ErrNoData when nothing matches.
func (s *ObservationStore) GetByTraderSince(_ context.Context, trader string, since time.Time) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.Trader == trader && !o.Timestamp.Before(since) {
			obsCopy := *o
			result = append(result, &obsCopy)
		}
	}
	if len(result) == 0 {
		return nil, storage.ErrNoData
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

var _ storage.ObservationStore = (*ObservationStore)(nil)
