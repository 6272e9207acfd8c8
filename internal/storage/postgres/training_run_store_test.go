package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/storage"
)

func testRun(id string, kind domain.StrategyKind, token string, trainedAt time.Time) *domain.TrainingRun {
	return &domain.TrainingRun{
		RunID:        id,
		Strategy:     kind,
		Token:        token,
		SampleCount:  540,
		FeatureCount: 16,
		HeldOutMSE:   ptr(0.042),
		TrainedAt:    trainedAt,
		DurationMs:   1234,
	}
}

func TestTrainingRunStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)

	run := testRun("run-1", domain.StrategyForest, "WBNB", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetLatest(ctx, domain.StrategyForest, "WBNB")
	require.NoError(t, err)

	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, run.Strategy, got.Strategy)
	assert.Equal(t, run.Token, got.Token)
	assert.Equal(t, run.SampleCount, got.SampleCount)
	assert.Equal(t, run.FeatureCount, got.FeatureCount)
	require.NotNil(t, got.HeldOutMSE)
	assert.InDelta(t, 0.042, *got.HeldOutMSE, 1e-9)
	assert.Equal(t, run.DurationMs, got.DurationMs)
	assert.WithinDuration(t, run.TrainedAt, got.TrainedAt, time.Millisecond)
}

func TestTrainingRunStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)

	run := testRun("dup-run", domain.StrategyForest, "WBNB", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, run))

	err := store.Insert(ctx, run)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTrainingRunStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)

	err := store.Insert(ctx, &domain.TrainingRun{RunID: "x", Strategy: "bogus"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Insert(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestTrainingRunStore_GetLatestPicksNewest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, testRun("old", domain.StrategyWindow, "WBNB", base)))
	require.NoError(t, store.Insert(ctx, testRun("new", domain.StrategyWindow, "WBNB", base.Add(time.Hour))))
	// Neighbours that must not interfere
	require.NoError(t, store.Insert(ctx, testRun("other-token", domain.StrategyWindow, "CAKE", base.Add(2*time.Hour))))
	require.NoError(t, store.Insert(ctx, testRun("other-kind", domain.StrategyForest, "WBNB", base.Add(3*time.Hour))))

	got, err := store.GetLatest(ctx, domain.StrategyWindow, "WBNB")
	require.NoError(t, err)
	assert.Equal(t, "new", got.RunID)
}

func TestTrainingRunStore_GetLatestNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTrainingRunStore(pool)
	_, err := store.GetLatest(context.Background(), domain.StrategyForest, "WBNB")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrainingRunStore_GetByStrategyOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order
	require.NoError(t, store.Insert(ctx, testRun("b", domain.StrategyForest, "WBNB", base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testRun("a", domain.StrategyForest, "WBNB", base)))
	require.NoError(t, store.Insert(ctx, testRun("w", domain.StrategyWindow, "WBNB", base)))

	got, err := store.GetByStrategy(ctx, domain.StrategyForest)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RunID)
	assert.Equal(t, "b", got[1].RunID)
}

func TestTrainingRunStore_NullHeldOutMSE(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewTrainingRunStore(pool)

	run := testRun("no-mse", domain.StrategyForest, "WBNB", time.Now().UTC())
	run.HeldOutMSE = nil
	require.NoError(t, store.Insert(ctx, run))

	got, err := store.GetLatest(ctx, domain.StrategyForest, "WBNB")
	require.NoError(t, err)
	assert.Nil(t, got.HeldOutMSE)
}
