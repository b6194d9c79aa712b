package operation

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/object"
)

func TestRegistry_BuiltinKinds(t *testing.T) {
	kinds := Kinds()
	for _, k := range []string{
		KindGetObject, KindGetObjectByLocator, KindGetAllObjects, KindGetObjectsByLocators,
		KindKNN, KindRange, KindIncrementalKNN, KindApproxKNN, KindApproxRange,
		KindPartitionedKNN, KindPartitionedRange, KindAggregationKNN, KindDelete, KindBulkInsert,
	} {
		assert.Contains(t, kinds, k)
	}
	assert.True(t, slices.IsSorted(kinds))
}

func TestRegistry_New(t *testing.T) {
	q, a, b, _, _ := scenario()

	tests := []struct {
		kind string
		args []any
	}{
		{KindGetObject, []any{a.ID()}},
		{KindGetObjectByLocator, []any{"a"}},
		{KindGetAllObjects, []any{5}},
		{KindGetObjectsByLocators, []any{[]string{"a"}}},
		{KindKNN, []any{object.Object(q), 3}},
		{KindRange, []any{object.Object(q), float32(1), 0}},
		{KindIncrementalKNN, []any{object.Object(q), 2}},
		{KindApproxKNN, []any{object.Object(q), 3, StopObjectCount, float64(10)}},
		{KindApproxRange, []any{object.Object(q), float32(1), 0, StopPercentOfData, float64(10)}},
		{KindPartitionedKNN, []any{object.Object(q), 3}},
		{KindPartitionedRange, []any{object.Object(q), float32(1), 0}},
		{KindAggregationKNN, []any{[]object.Object{q, a}, object.Mean, 2}},
		{KindDelete, []any{object.Object(a), 1}},
		{KindBulkInsert, []any{[]object.Object{a, b}}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			op, err := New(tt.kind, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, op.Kind())

			again, err := New(tt.kind, op.Arguments())
			require.NoError(t, err)
			assert.True(t, op.DataEqual(again))
		})
	}
}

func TestRegistry_Errors(t *testing.T) {
	q, _, _, _, _ := scenario()

	_, err := New("bogus", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(KindKNN, []any{object.Object(q)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(KindKNN, []any{object.Object(q), "three"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRegistry_Register(t *testing.T) {
	Register("knn-alias", func(args []any, optFns ...Option) (Operation, error) {
		return newKNNFromArgs(args, optFns...)
	})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, "knn-alias")
		registryMu.Unlock()
	})

	q, _, _, _, _ := scenario()
	op, err := New("knn-alias", []any{object.Object(q), 1})
	require.NoError(t, err)
	assert.IsType(t, &KNN{}, op)
	assert.Contains(t, Kinds(), "knn-alias")
}

func roundTrip(t *testing.T, op Operation) Operation {
	t.Helper()
	s, err := TakeSnapshot(op)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := FromSnapshot(&decoded)
	require.NoError(t, err)
	assert.Equal(t, op.ID(), restored.ID())
	assert.Equal(t, op.Kind(), restored.Kind())
	assert.Equal(t, op.ErrorCode(), restored.ErrorCode())
	assert.Equal(t, *op.Stats(), *restored.Stats())
	assert.True(t, op.DataEqual(restored))
	return restored
}

func TestSnapshot_KNN(t *testing.T) {
	q, a, b, c, d := scenario()
	op, err := NewKNN(q, 2, WithAnswerType(Cloned), WithParameter("peer", "p1"))
	require.NoError(t, err)
	evaluate(t, op, a, b, c, d)
	op.EndOperation()

	restored := roundTrip(t, op).(*KNN)
	assert.Equal(t, Cloned, restored.AnswerType())
	assert.Equal(t, distances(answerOf(t, op)), distances(answerOf(t, restored)))
	assert.True(t, restored.Collection().Frozen())
	v, ok := restored.Parameter("peer")
	require.True(t, ok)
	assert.Equal(t, "p1", v)
}

func TestSnapshot_ApproxKNN(t *testing.T) {
	q := scalar(0, "q")
	op, err := NewApproxKNN(q, 3, StopObjectCount, 100)
	require.NoError(t, err)
	op.Approximation().MarkVisited(3)
	evaluate(t, op, line(5)...)

	restored := roundTrip(t, op).(*ApproxKNN)
	assert.Equal(t, op.Approximation().GuaranteedRadius(), restored.Approximation().GuaranteedRadius())
	assert.Equal(t, []uint32{3}, restored.Approximation().Visited().ToArray())
	assert.Equal(t, 3, restored.AnswerCount())
	assert.False(t, restored.IsFinished())
}

func TestSnapshot_PartitionedKNN(t *testing.T) {
	q, a, b, c, d := scenario()
	op, err := NewPartitionedKNN(q, 2)
	require.NoError(t, err)
	op.SetPartition(1)
	evaluate(t, op, a, d)
	op.SetPartition(2)
	evaluate(t, op, b, c)

	restored := roundTrip(t, op).(*PartitionedKNN)
	assert.Equal(t, []string{"a"}, locators(restored.PartitionAnswer(1)))
	assert.Len(t, restored.PartitionAnswer(2), 1)
	assert.Equal(t, 2, restored.AnswerCount())
}

func TestSnapshot_IncrementalKNN(t *testing.T) {
	q := scalar(0, "q")
	objs := line(4)
	op, err := NewIncrementalKNN(q, 1)
	require.NoError(t, err)
	evaluate(t, op, objs...)
	op.EndOperation()
	require.NoError(t, op.NextRound())

	restored := roundTrip(t, op).(*IncrementalKNN)
	assert.Equal(t, 1, restored.Returned())
	assert.Equal(t, 3, restored.Pending())
	assert.Zero(t, evaluate(t, restored, objs[0]))
}

func TestSnapshot_ListingAndMutation(t *testing.T) {
	_, a, b, _, _ := scenario()

	all, err := NewGetAllObjects(0)
	require.NoError(t, err)
	evaluate(t, all, a, b)
	restored := roundTrip(t, all).(*GetAllObjects)
	assert.Equal(t, 2, restored.AnswerCount())

	get, err := NewGetObject(a.ID())
	require.NoError(t, err)
	evaluate(t, get, a)
	get.EndOperation()
	restoredGet := roundTrip(t, get).(*GetObject)
	require.NotNil(t, restoredGet.Answer())
	assert.Equal(t, a.ID(), restoredGet.Answer().ID())

	ins, err := NewBulkInsert([]object.Object{a, b})
	require.NoError(t, err)
	_, err = ins.Insert(newList(t))
	require.NoError(t, err)
	restoredIns := roundTrip(t, ins).(*BulkInsert)
	assert.Equal(t, 2, restoredIns.Inserted())
}

func TestSnapshot_AggregationKNN(t *testing.T) {
	q1, a, b, _, _ := scenario()
	q2 := scalar(3, "q2")
	op, err := NewAggregationKNN([]object.Object{q1, q2}, object.WeightedSum{Weights: []float32{2, 1}}, 1)
	require.NoError(t, err)
	evaluate(t, op, a, b)

	restored := roundTrip(t, op).(*AggregationKNN)
	items := answerOf(t, restored)
	require.Len(t, items, 1)
	assert.Equal(t, answerOf(t, op)[0].SubDistances, items[0].SubDistances)
	assert.Equal(t, "weighted-sum", restored.Aggregation().Name())
}

func TestArgValue_NonFinite(t *testing.T) {
	v, err := ToArgValue(float32(posInf()))
	require.NoError(t, err)
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded ArgValue
	require.NoError(t, json.Unmarshal(data, &decoded))
	got, err := decoded.Value()
	require.NoError(t, err)
	assert.Equal(t, float32(posInf()), got)
}

func posInf() float64 { return float64(inf) }
