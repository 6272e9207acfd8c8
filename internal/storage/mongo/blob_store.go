package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"crypto-price-lab/internal/storage"
)

// BlobStore implements storage.BlobStore on GridFS. Every Put uploads a new
// revision under the logical filename; GetLatest downloads the most recent
// revision. Nothing ties the model revision to the scaler revision.
type BlobStore struct {
	bucket *gridfs.Bucket
}

// NewBlobStore creates a GridFS-backed blob store in the connection's
// database.
func NewBlobStore(conn *Conn) (*BlobStore, error) {
	bucket, err := gridfs.NewBucket(conn.db)
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &BlobStore{bucket: bucket}, nil
}

// Compile-time interface check.
var _ storage.BlobStore = (*BlobStore)(nil)

// Put stores blob under name as a new revision.
func (s *BlobStore) Put(ctx context.Context, name string, blob []byte) error {
	if name == "" {
		return storage.ErrInvalidInput
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(dl)
	}
	if _, err := s.bucket.UploadFromStream(name, bytes.NewReader(blob)); err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	return nil
}

// GetLatest retrieves the most recent revision stored under name.
func (s *BlobStore) GetLatest(ctx context.Context, name string) ([]byte, error) {
	var buf bytes.Buffer

	if dl, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(dl)
	}
	if _, err := s.bucket.DownloadToStreamByName(name, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
