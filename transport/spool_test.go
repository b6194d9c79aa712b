package transport

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/blobstore"
	"github.com/hupe1980/simsearch/internal/resource"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
)

// peerAnswer evaluates a clone of op over the objects at xs.
func peerAnswer(t *testing.T, op operation.QueryOperation, xs ...float32) operation.Operation {
	t.Helper()
	clone := op.Clone(false).(operation.QueryOperation)
	_, err := clone.Evaluate(object.NewSliceIterator(scalars(xs...)...))
	require.NoError(t, err)
	clone.EndOperation()
	return clone
}

func TestSpool_PutCollect(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	spool := NewSpool(store)

	op, err := operation.NewKNN(scalar(0), 3)
	require.NoError(t, err)

	require.NoError(t, spool.Put(ctx, "peer-a", peerAnswer(t, op, 5, 1, 9)))
	require.NoError(t, spool.Put(ctx, "peer-b", peerAnswer(t, op, -2, 7, 4)))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{Key(op, "peer-a"), Key(op, "peer-b")}, names)

	peers, err := spool.Peers(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, []string{"peer-a", "peer-b"}, peers)

	n, err := spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"1", "-2", "4"}, locators(slices.Collect(op.Answer())))

	require.NoError(t, spool.Clear(ctx, op))
	peers, err = spool.Peers(ctx, op)
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestSpool_CollectMatchesLocal(t *testing.T) {
	ctx := context.Background()
	spool := NewSpool(blobstore.NewMemoryStore(), WithEncoder(NewEncoder(WithCompression(0))))

	all := []float32{8, -3, 2, 6, -1, 4}
	local, err := operation.NewKNN(scalar(0), 4)
	require.NoError(t, err)
	_, err = local.Evaluate(object.NewSliceIterator(scalars(all...)...))
	require.NoError(t, err)

	op, err := operation.NewKNN(scalar(0), 4)
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "1", peerAnswer(t, op, all[:3]...)))
	require.NoError(t, spool.Put(ctx, "2", peerAnswer(t, op, all[3:]...)))

	_, err = spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, locators(slices.Collect(local.Answer())), locators(slices.Collect(op.Answer())))
}

func TestSpool_InvalidPeer(t *testing.T) {
	spool := NewSpool(blobstore.NewMemoryStore())
	op := evaluatedKNN(t, 1, 1)

	for _, peer := range []string{"", "a/b"} {
		require.ErrorIs(t, spool.Put(context.Background(), peer, op), ErrInvalidPeer)
	}
}

func TestSpool_IdentityMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	spool := NewSpool(store)

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	other := evaluatedKNN(t, 1, 1)

	frame, err := NewEncoder().Encode(other)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, Key(op, "rogue"), frame))

	n, err := spool.Collect(ctx, op)
	require.ErrorIs(t, err, ErrIdentityMismatch)
	assert.Equal(t, 0, n)

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, Key(op, "rogue"), de.Name)
}

func TestSpool_CorruptFrame(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	spool := NewSpool(store)

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, Key(op, "bad"), []byte("garbage")))
	require.NoError(t, store.Put(ctx, Key(op, "empty"), nil))

	_, err = spool.Collect(ctx, op)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestSpool_IncompatiblePartial(t *testing.T) {
	ctx := context.Background()
	spool := NewSpool(blobstore.NewMemoryStore())

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	rng, err := operation.NewRange(scalar(0), 1, 0, operation.WithID(op.ID()))
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "peer", rng))

	_, err = spool.Collect(ctx, op)
	var ise *operation.InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.ErrorIs(t, err, operation.ErrIncompatible)
}

func TestSpool_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})
	spool := NewSpool(blobstore.NewMemoryStore(), WithController(rc))

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "peer", peerAnswer(t, op, 1)))

	_, err = spool.Collect(ctx, op)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestSpool_ReleasesMemory(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, IOLimitBytesPerSec: 1 << 30})
	spool := NewSpool(blobstore.NewMemoryStore(), WithController(rc))

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "peer", peerAnswer(t, op, 1)))

	n, err := spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

type failingStore struct {
	blobstore.Store
	err error
}

func (s failingStore) List(context.Context, string) ([]string, error) { return nil, s.err }

func TestSpool_StoreFailure(t *testing.T) {
	boom := errors.New("boom")
	spool := NewSpool(failingStore{Store: blobstore.NewMemoryStore(), err: boom})

	op := evaluatedKNN(t, 1, 1)
	_, err := spool.Collect(context.Background(), op)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, spool.Clear(context.Background(), op), boom)
}

func TestSpool_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	spool := NewSpool(blobstore.NewMemoryStore())

	op, err := operation.NewKNN(scalar(0), 1)
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "peer", peerAnswer(t, op, 1)))
	cancel()

	_, err = spool.Collect(ctx, op)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpool_CommitLogRejectsDoublePublish(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	commits := NewMemoryCommitLog()
	spool := NewSpool(store, WithCommitLog(commits))

	op, err := operation.NewKNN(scalar(0), 2)
	require.NoError(t, err)

	require.NoError(t, spool.Put(ctx, "peer-a", peerAnswer(t, op, 5, 1)))
	err = spool.Put(ctx, "peer-a", peerAnswer(t, op, 0.5))
	require.ErrorIs(t, err, ErrAlreadyCommitted)

	n, err := spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"1", "5"}, locators(slices.Collect(op.Answer())))
}

func TestSpool_CommitLogCollectsCommittedOnly(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	commits := NewMemoryCommitLog()
	spool := NewSpool(store, WithCommitLog(commits))

	op, err := operation.NewKNN(scalar(0), 3)
	require.NoError(t, err)
	require.NoError(t, spool.Put(ctx, "peer-a", peerAnswer(t, op, 4)))

	frame, err := NewEncoder().Encode(peerAnswer(t, op, 1))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, Key(op, "stray"), frame))
	require.NoError(t, commits.Commit(ctx, op.ID().String(), "pending"))

	peers, err := spool.Peers(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, []string{"peer-a", "pending"}, peers)

	n, err := spool.Collect(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"4"}, locators(slices.Collect(op.Answer())))

	require.NoError(t, spool.Clear(ctx, op))
	committed, err := commits.Committed(ctx, op.ID().String())
	require.NoError(t, err)
	assert.Empty(t, committed)
	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

type failingPutStore struct {
	blobstore.Store
	err error
}

func (s failingPutStore) Put(context.Context, string, []byte) error { return s.err }

func TestSpool_CommitLogRevokesFailedWrite(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	commits := NewMemoryCommitLog()
	spool := NewSpool(failingPutStore{Store: blobstore.NewMemoryStore(), err: boom}, WithCommitLog(commits))

	op := evaluatedKNN(t, 1, 1)
	require.ErrorIs(t, spool.Put(ctx, "peer", op), boom)

	committed, err := commits.Committed(ctx, op.ID().String())
	require.NoError(t, err)
	assert.Empty(t, committed)
}

func TestMemoryCommitLog(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryCommitLog()

	require.NoError(t, log.Commit(ctx, "op", "b"))
	require.NoError(t, log.Commit(ctx, "op", "a"))
	require.NoError(t, log.Commit(ctx, "other", "a"))
	require.ErrorIs(t, log.Commit(ctx, "op", "a"), ErrAlreadyCommitted)

	peers, err := log.Committed(ctx, "op")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, peers)

	require.NoError(t, log.Revoke(ctx, "op", "a"))
	require.NoError(t, log.Revoke(ctx, "op", "missing"))
	require.NoError(t, log.Commit(ctx, "op", "a"))

	peers, err = log.Committed(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, peers)
}
