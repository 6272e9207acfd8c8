package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

// TrainingRunStore is an in-memory implementation of storage.TrainingRunStore.
type TrainingRunStore struct {
	mu   sync.RWMutex
	runs []*domain.TrainingRun
}

// NewTrainingRunStore creates a new in-memory training run store.
func NewTrainingRunStore() *TrainingRunStore {
	return &TrainingRunStore{}
}

// Insert adds a completed run.
func (s *TrainingRunStore) Insert(_ context.Context, run *domain.TrainingRun) error {
	if run == nil || run.RunID == "" || !run.Strategy.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.runs {
		if r.RunID == run.RunID {
			return storage.ErrDuplicateKey
		}
	}

	runCopy := *run
	s.runs = append(s.runs, &runCopy)
	return nil
}

// GetLatest retrieves the most recent run for a strategy/token pair.
func (s *TrainingRunStore) GetLatest(_ context.Context, strategy domain.StrategyKind, token string) (*domain.TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.TrainingRun
	for _, r := range s.runs {
		if r.Strategy != strategy || r.Token != token {
			continue
		}
		if latest == nil || r.TrainedAt.After(latest.TrainedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	runCopy := *latest
	return &runCopy, nil
}

// GetByStrategy retrieves all runs for a strategy, ordered by trained_at ASC.
func (s *TrainingRunStore) GetByStrategy(_ context.Context, strategy domain.StrategyKind) ([]*domain.TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TrainingRun
	for _, r := range s.runs {
		if r.Strategy == strategy {
			runCopy := *r
			result = append(result, &runCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TrainedAt.Before(result[j].TrainedAt)
	})
	return result, nil
}

var _ storage.TrainingRunStore = (*TrainingRunStore)(nil)
