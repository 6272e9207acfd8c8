package pipeline

import (
	"context"
	"fmt"

	"crypto-price-lab/internal/domain"
	"crypto-price-lab/internal/model"
	"crypto-price-lab/internal/storage"
)

// persistPair writes the fitted model then the fitted scaler as two separate
// blob versions. There is no transaction across the two writes: a failure
// after the first leaves the latest model paired with a stale scaler.
func persistPair(ctx context.Context, blobs storage.BlobStore, kind domain.StrategyKind, reg, sc any) error {
	blob, err := model.Encode(reg)
	if err != nil {
		return err
	}
	if err := blobs.Put(ctx, domain.ModelBlobName(kind), blob); err != nil {
		return fmt.Errorf("persist model: %w", err)
	}

	blob, err = model.Encode(sc)
	if err != nil {
		return err
	}
	if err := blobs.Put(ctx, domain.ScalerBlobName(kind), blob); err != nil {
		return fmt.Errorf("persist scaler: %w", err)
	}
	return nil
}
