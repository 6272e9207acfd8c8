package memory

import (
	"context"
	"sync"

	"crypto-price-lab/internal/storage"
)

// BlobStore is an in-memory implementation of storage.BlobStore. Versions
// accumulate per name; GetLatest returns the most recent Put.
type BlobStore struct {
	mu       sync.RWMutex
	versions map[string][][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{versions: make(map[string][][]byte)}
}

// Put stores blob under name as a new version.
func (s *BlobStore) Put(_ context.Context, name string, blob []byte) error {
	if name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blobCopy := make([]byte, len(blob))
	copy(blobCopy, blob)
	s.versions[name] = append(s.versions[name], blobCopy)
	return nil
}

// GetLatest retrieves the most recent version stored under name.
func (s *BlobStore) GetLatest(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.versions[name]
	if len(versions) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := versions[len(versions)-1]
	blobCopy := make([]byte, len(latest))
	copy(blobCopy, latest)
	return blobCopy, nil
}

// VersionCount reports how many versions exist for name. Test helper.
func (s *BlobStore) VersionCount(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.versions[name])
}

var _ storage.BlobStore = (*BlobStore)(nil)
