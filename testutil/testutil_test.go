package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/object"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UnitVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))

	// Check normalization
	for _, vec := range v {
		var sum float32
		for _, val := range vec {
			sum += val * val
		}
		assert.InDelta(t, float32(1.0), sum, 1e-5)
	}
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ClusteredVectors(100, 32, 5, 0.1)

	assert.Equal(t, 100, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.Len(t, rng.GaussianVectors(3, 4), 3)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)

	rng.Reset()
	v2 := rng.UniformVectors(1, 10)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestSplitAndPartitions(t *testing.T) {
	objs := Objects(NewRNG(1).UniformVectors(7, 2))
	groups := Split(objs, 3)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0], 3)
	assert.Len(t, groups[2], 2)

	parts := SlicePartitions(groups...)
	require.Len(t, parts, 3)
	assert.Equal(t, uint32(1), parts[0].ID)
	assert.Equal(t, 3, parts[0].Size)

	it, err := parts[1].Open(t.Context())
	require.NoError(t, err)
	var got []string
	for it.Next() {
		got = append(got, it.Current().Locator())
	}
	assert.Equal(t, []string{"v1", "v4"}, got)
}

func TestBruteForce(t *testing.T) {
	objs := Objects([][]float32{{3}, {1}, {-2}, {5}})
	q := object.NewVector([]float32{0})

	knn := BruteForceKNN(q, objs, 2)
	assert.Equal(t, []string{"v1", "v2"}, Locators(knn))

	rng := BruteForceRange(q, objs, 3)
	assert.Equal(t, []string{"v1", "v2", "v0"}, Locators(rng))
}

func TestComputeRecall(t *testing.T) {
	objs := Objects([][]float32{{3}, {1}, {-2}, {5}})
	q := object.NewVector([]float32{0})
	truth := BruteForceKNN(q, objs, 2)

	assert.Equal(t, 1.0, ComputeRecall(truth, truth))
	assert.Equal(t, 0.5, ComputeRecall(truth, truth[:1]))
	assert.Equal(t, 0.0, ComputeRecall(truth, nil))
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall(nil, slices.Clone(truth)))
}
