package engine

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/index/memindex"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/operation"
	"github.com/hupe1980/simsearch/rank"
)

func scalar(x float32) *object.Vector {
	return object.NewVector([]float32{x}, object.WithLocator(fmt.Sprint(x)))
}

func scalars(xs ...float32) []object.Object {
	out := make([]object.Object, len(xs))
	for i, x := range xs {
		out[i] = scalar(x)
	}
	return out
}

func sliceParts(groups ...[]object.Object) []Partition {
	parts := make([]Partition, len(groups))
	for i, g := range groups {
		parts[i] = Partition{
			ID:   uint32(i + 1),
			Size: len(g),
			Open: func(context.Context) (object.Iterator, error) {
				return object.NewSliceIterator(g...), nil
			},
		}
	}
	return parts
}

func locators(items []rank.RankedObject) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Object.Locator()
	}
	return out
}

type recordingObserver struct {
	mu        sync.Mutex
	evaluated []string
	merges    int
	skipped   int
}

func (r *recordingObserver) OnEvaluate(kind string, _ time.Duration, _ operation.Stats, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluated = append(r.evaluated, kind)
}

func (r *recordingObserver) OnMerge(_ string, _, skipped int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merges++
	r.skipped += skipped
}

type failingIterator struct{ err error }

func (f failingIterator) Next() bool              { return false }
func (f failingIterator) Current() object.Object { return nil }
func (f failingIterator) Err() error              { return f.err }

func TestExecutor_Evaluate(t *testing.T) {
	obs := &recordingObserver{}
	e := New(WithMetricsObserver(obs))

	op, err := operation.NewKNN(scalar(0), 2)
	require.NoError(t, err)

	require.NoError(t, e.Evaluate(t.Context(), op, object.NewSliceIterator(scalars(3, 1, -2, 5)...)))
	assert.Equal(t, operation.ResponseReturned, op.ErrorCode())
	assert.Equal(t, []string{"1", "-2"}, locators(slices.Collect(op.Answer())))
	assert.Equal(t, []string{operation.KindKNN}, obs.evaluated)

	err = e.Evaluate(t.Context(), op, object.NewSliceIterator(scalars(0)...))
	assert.ErrorIs(t, err, operation.ErrFinished)
	assert.Equal(t, operation.ResponseReturned, op.ErrorCode())
}

func TestExecutor_EvaluateFailure(t *testing.T) {
	e := New()
	op, err := operation.NewKNN(scalar(0), 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = e.Evaluate(t.Context(), op, failingIterator{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, operation.StorageFailure, op.ErrorCode())
}

func TestExecutor_EvaluateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	op, err := operation.NewKNN(scalar(0), 2)
	require.NoError(t, err)
	assert.ErrorIs(t, New().Evaluate(ctx, op, object.NewSliceIterator()), context.Canceled)
	assert.False(t, op.IsFinished())
}

func TestExecutor_EvaluatePartitions(t *testing.T) {
	groups := [][]object.Object{
		scalars(9, 4, 7),
		scalars(-1, 12),
		scalars(3, -6, 2),
		scalars(8),
	}
	var all []object.Object
	for _, g := range groups {
		all = append(all, g...)
	}

	want, err := operation.NewKNN(scalar(0), 4)
	require.NoError(t, err)
	require.NoError(t, New().Evaluate(t.Context(), want, object.NewSliceIterator(all...)))

	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			obs := &recordingObserver{}
			e := New(WithConcurrency(concurrency), WithMetricsObserver(obs))

			op, err := operation.NewKNN(scalar(0), 4)
			require.NoError(t, err)
			require.NoError(t, e.EvaluatePartitions(t.Context(), op, sliceParts(groups...)))

			assert.Equal(t, operation.ResponseReturned, op.ErrorCode())
			assert.Equal(t, locators(slices.Collect(want.Answer())), locators(slices.Collect(op.Answer())))
			assert.Equal(t, int64(len(all)), op.Stats().ObjectsAccessed)
			assert.Len(t, obs.evaluated, len(groups))
			assert.Equal(t, 1, obs.merges)
		})
	}
}

func TestExecutor_EvaluatePartitions_Partitioned(t *testing.T) {
	e := New(WithConcurrency(2))
	op, err := operation.NewPartitionedKNN(scalar(0), 3)
	require.NoError(t, err)

	require.NoError(t, e.EvaluatePartitions(t.Context(), op, sliceParts(scalars(1, 10), scalars(2, 3), scalars(20))))

	assert.Equal(t, []string{"1", "2", "3"}, locators(slices.Collect(op.Answer())))
	assert.Equal(t, []string{"1"}, locators(op.PartitionAnswer(1)))
	assert.Equal(t, []string{"2", "3"}, locators(op.PartitionAnswer(2)))
	assert.Empty(t, op.PartitionAnswer(3))
}

func TestExecutor_EvaluatePartitions_ApproximateStops(t *testing.T) {
	obs := &recordingObserver{}
	e := New(WithConcurrency(1), WithMetricsObserver(obs))

	op, err := operation.NewApproxKNN(scalar(0), 2, operation.StopPartitionCount, 2)
	require.NoError(t, err)

	parts := sliceParts(scalars(5, 6), scalars(3, 4), scalars(1, 2), scalars(0.5))
	require.NoError(t, e.EvaluatePartitions(t.Context(), op, parts))

	assert.Equal(t, operation.ResponseReturned, op.ErrorCode())
	assert.Equal(t, []uint32{1, 2}, op.Approximation().Visited().ToArray())
	assert.Equal(t, []string{"3", "4"}, locators(slices.Collect(op.Answer())))
	assert.Equal(t, operation.RadiusNotGuaranteed, op.Approximation().GuaranteedRadius())
	assert.Equal(t, 2, obs.skipped)
}

func TestExecutor_EvaluatePartitions_ApproximateComplete(t *testing.T) {
	e := New(WithConcurrency(2))
	op, err := operation.NewApproxKNN(scalar(0), 2, operation.StopPercentOfData, 100)
	require.NoError(t, err)

	require.NoError(t, e.EvaluatePartitions(t.Context(), op, sliceParts(scalars(5, 6), scalars(3, 4))))

	assert.Equal(t, 4, op.Approximation().DataSize())
	assert.Equal(t, uint64(2), op.Approximation().VisitedCount())
	assert.True(t, math.IsInf(float64(op.Approximation().GuaranteedRadius()), 1))
}

func TestExecutor_EvaluatePartitions_Errors(t *testing.T) {
	e := New(WithConcurrency(2))

	op, err := operation.NewKNN(scalar(0), 2)
	require.NoError(t, err)
	assert.ErrorIs(t, e.EvaluatePartitions(t.Context(), op, nil), ErrNoPartitions)
	assert.False(t, op.IsFinished())

	boom := errors.New("boom")
	parts := sliceParts(scalars(1), scalars(2))
	parts[1].Open = func(context.Context) (object.Iterator, error) { return nil, boom }

	err = e.EvaluatePartitions(t.Context(), op, parts)
	require.ErrorIs(t, err, boom)
	var pe *PartitionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, uint32(2), pe.Partition)
	assert.Equal(t, operation.StorageFailure, op.ErrorCode())

	assert.ErrorIs(t, e.EvaluatePartitions(t.Context(), op, parts), operation.ErrFinished)
}

func TestExecutor_IndexPartition(t *testing.T) {
	l := memindex.NewList[object.ID, object.Object](memindex.WithBlockSize[object.Object](2))
	for _, o := range scalars(4, 1, 3) {
		require.NoError(t, l.Add(o))
	}
	s := memindex.NewSortedByLocator()
	for _, o := range scalars(2, 5) {
		require.NoError(t, s.Add(o))
	}

	op, err := operation.NewKNN(scalar(0), 3)
	require.NoError(t, err)
	parts := []Partition{
		IndexPartition[object.ID](1, l),
		IndexPartition[string](2, s),
	}
	require.NoError(t, New(WithConcurrency(2)).EvaluatePartitions(t.Context(), op, parts))

	assert.Equal(t, []string{"1", "2", "3"}, locators(slices.Collect(op.Answer())))
	assert.Equal(t, int64(2), op.Stats().BlockReads)
}

func TestExecutor_Incremental(t *testing.T) {
	e := New()
	op, err := operation.NewIncrementalKNN(scalar(0), 2)
	require.NoError(t, err)

	var got []string
	for item, err := range e.Incremental(t.Context(), op, object.NewSliceIterator(scalars(5, 1, 4, 2, 3)...)) {
		require.NoError(t, err)
		got = append(got, item.Object.Locator())
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
	assert.Equal(t, operation.ResponseReturned, op.ErrorCode())
	assert.Equal(t, 4, op.Returned())
}

func TestExecutor_IncrementalBreak(t *testing.T) {
	e := New()
	op, err := operation.NewIncrementalKNN(scalar(0), 2)
	require.NoError(t, err)

	var got []string
	for item, err := range e.Incremental(t.Context(), op, object.NewSliceIterator(scalars(5, 1, 4, 2, 3)...)) {
		require.NoError(t, err)
		got = append(got, item.Object.Locator())
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
	assert.True(t, op.HasNext())
	assert.Equal(t, 2, op.Returned())
}

func TestExecutor_IncrementalError(t *testing.T) {
	op, err := operation.NewIncrementalKNN(scalar(0), 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	var errs []error
	for _, err := range New().Incremental(t.Context(), op, failingIterator{err: boom}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, operation.StorageFailure, op.ErrorCode())
}

func byValue() *memindex.Sorted[float32, object.Object] {
	value := func(o object.Object) float32 { return o.(*object.Vector).Data()[0] }
	c := index.ComparatorFunc[float32, object.Object](func(key float32, o object.Object) int {
		return cmp.Compare(key, value(o))
	})
	return memindex.NewSorted[float32, object.Object](c, value)
}

func valueProximity(key float32, o object.Object) float64 {
	return math.Abs(float64(key - o.(*object.Vector).Data()[0]))
}

func TestNearestKeys(t *testing.T) {
	idx := byValue()
	for _, o := range scalars(8, 1, 4, 2, 7) {
		require.NoError(t, idx.Add(o))
	}

	got, err := NearestKeys[float32](t.Context(), idx, 5, valueProximity, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].Locator())
	assert.Equal(t, "7", got[1].Locator())
	assert.Equal(t, "8", got[2].Locator())

	got, err = NearestKeys[float32](t.Context(), idx, 5, valueProximity, 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = NearestKeys[float32](t.Context(), idx, 5, valueProximity, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEvaluateNearKey(t *testing.T) {
	idx := byValue()
	for _, o := range scalars(8, 1, 4, 2, 7) {
		require.NoError(t, idx.Add(o))
	}

	op, err := operation.NewApproxKNN(scalar(5), 1, operation.StopObjectCount, 2)
	require.NoError(t, err)
	require.NoError(t, EvaluateNearKey[float32](t.Context(), New(), op, idx, 5, valueProximity))

	assert.Equal(t, int64(2), op.Stats().ObjectsAccessed)
	assert.Equal(t, []string{"4"}, locators(slices.Collect(op.Answer())))
	assert.Equal(t, operation.RadiusNotGuaranteed, op.Approximation().GuaranteedRadius())
}
