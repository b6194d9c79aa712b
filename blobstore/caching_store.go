package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/simsearch/internal/cache"
)

// CachingStore wraps a Store and keeps whole blobs in an LRU cache.
// Put and Delete through the wrapper invalidate the cached copy; writes
// made to the inner store directly are not observed.
type CachingStore struct {
	inner Store
	cache *cache.LRU
}

// NewCachingStore creates a new CachingStore.
func NewCachingStore(inner Store, c *cache.LRU) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: c,
	}
}

// Open serves the blob from the cache, loading it on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.cache.Get(name); ok {
		return &memoryBlob{data: data}, nil
	}

	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	data := make([]byte, b.Size())
	if len(data) > 0 {
		n, err := b.ReadAt(ctx, data, 0)
		if err != nil && (!errors.Is(err, io.EOF) || n < len(data)) {
			return nil, err
		}
	}

	s.cache.Set(name, data)
	return &memoryBlob{data: data}, nil
}

// Put writes through to the inner store.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob from the inner store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
