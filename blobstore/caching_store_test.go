package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/internal/cache"
)

type countingStore struct {
	Store
	opens int
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	s.opens++
	return s.Store.Open(ctx, name)
}

func TestCachingStore(t *testing.T) {
	testStoreLifecycle(t, NewCachingStore(NewMemoryStore(), cache.NewLRU(1<<20, nil)))
}

func TestCachingStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: NewMemoryStore()}
	s := NewCachingStore(inner, cache.NewLRU(1<<20, nil))

	require.NoError(t, s.Put(ctx, "op/a", []byte("hello")))

	for range 3 {
		got, err := ReadAll(ctx, s, "op/a")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got)
	}
	assert.Equal(t, 1, inner.opens)

	hits, misses := s.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// Overwrite invalidates.
	require.NoError(t, s.Put(ctx, "op/a", []byte("world")))
	got, err := ReadAll(ctx, s, "op/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), got)
	assert.Equal(t, 2, inner.opens)

	require.NoError(t, s.Delete(ctx, "op/a"))
	_, err = s.Open(ctx, "op/a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_EmptyBlob(t *testing.T) {
	ctx := context.Background()
	s := NewCachingStore(NewMemoryStore(), cache.NewLRU(16, nil))

	require.NoError(t, s.Put(ctx, "empty", nil))
	b, err := s.Open(ctx, "empty")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, int64(0), b.Size())
	_, err = b.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, io.EOF)
}
