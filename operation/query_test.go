package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/object"
)

func TestGetObject(t *testing.T) {
	_, a, b, c, _ := scenario()

	op, err := NewGetObject(b.ID())
	require.NoError(t, err)
	n, err := op.Evaluate(iterOf(a, b, c))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Same(t, b, op.Answer())
	assert.Equal(t, int64(2), op.Stats().ObjectsAccessed)

	op.EndOperation()
	assert.Equal(t, ResponseReturned, op.ErrorCode())
	assert.True(t, op.WasSuccessful())

	missing, err := NewGetObject(object.NewID())
	require.NoError(t, err)
	evaluate(t, missing, a, c)
	missing.EndOperation()
	assert.Equal(t, ObjectNotFound, missing.ErrorCode())
	assert.False(t, missing.WasSuccessful())
}

func TestGetObject_MergeOnlyIntoEmptySlot(t *testing.T) {
	_, a, b, _, _ := scenario()
	id := a.ID()

	op, err := NewGetObject(id)
	require.NoError(t, err)
	empty := op.Clone(false).(*GetObject)
	found := op.Clone(false).(*GetObject)
	evaluate(t, found, a)

	require.NoError(t, op.UpdateFrom(empty))
	assert.Nil(t, op.Answer())
	require.NoError(t, op.UpdateFrom(found))
	assert.Same(t, a, op.Answer())

	other := op.Clone(false).(*GetObject)
	other.answer = b
	require.NoError(t, op.UpdateFrom(other))
	assert.Same(t, a, op.Answer())
}

func TestGetObjectByLocator(t *testing.T) {
	_, a, b, _, _ := scenario()

	op, err := NewGetObjectByLocator("b", WithAnswerType(Cloned))
	require.NoError(t, err)
	evaluate(t, op, a, b)
	require.NotNil(t, op.Answer())
	assert.NotSame(t, b, op.Answer())
	assert.Equal(t, b.ID(), op.Answer().ID())

	_, err = NewGetObjectByLocator("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	knn, err := NewKNN(a, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, op.UpdateFrom(knn), ErrIncompatible)
}

func TestGetAllObjects(t *testing.T) {
	_, a, b, c, d := scenario()

	op, err := NewGetAllObjects(3)
	require.NoError(t, err)
	assert.Equal(t, 3, evaluate(t, op, a, b, c, d))
	assert.Equal(t, []object.Object{a, b, c}, op.Answer())
	assert.Equal(t, int64(3), op.Stats().ObjectsAccessed)

	unlimited, err := NewGetAllObjects(0)
	require.NoError(t, err)
	p1 := unlimited.Clone(false).(*GetAllObjects)
	evaluate(t, p1, a, b)
	p2 := unlimited.Clone(false).(*GetAllObjects)
	evaluate(t, p2, b, c)

	require.NoError(t, unlimited.UpdateFrom(p1))
	require.NoError(t, unlimited.UpdateFrom(p2))
	assert.Equal(t, []object.Object{a, b, c}, unlimited.Answer())

	unlimited.EndOperation()
	assert.True(t, unlimited.WasSuccessful())
}

func TestGetObjectsByLocators(t *testing.T) {
	_, a, b, c, d := scenario()

	op, err := NewGetObjectsByLocators([]string{"d", "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, evaluate(t, op, a, b, c, d))
	assert.Equal(t, []object.Object{a, d}, op.Answer())

	op.ResetAnswer()
	assert.Zero(t, op.AnswerCount())

	_, err = NewGetObjectsByLocators(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
