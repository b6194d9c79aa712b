package testutil

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/simsearch/engine"
	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
// Uses Gaussian distribution for uniform distribution on the sphere.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		var norm float64
		for j := range vec {
			v := r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}
		if norm == 0 {
			norm = 1
		}
		inv := float32(1.0 / math.Sqrt(norm))
		for j := range vec {
			vec[j] *= inv
		}
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors clustered around random centroids.
// Useful for testing approximate stop conditions on non-uniform data.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	// UnitVectors takes the lock itself.
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		centroid := centroids[i%clusters]
		vec := data[i*dim : (i+1)*dim]
		for j := range dim {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// Objects wraps vectors as objects with the locators "v0", "v1", ...
func Objects(vectors [][]float32, optFns ...object.VectorOption) []object.Object {
	out := make([]object.Object, len(vectors))
	for i, v := range vectors {
		opts := append([]object.VectorOption{object.WithLocator(fmt.Sprintf("v%d", i))}, optFns...)
		out[i] = object.NewVector(v, opts...)
	}
	return out
}

// Split distributes objs round-robin over n groups.
func Split(objs []object.Object, n int) [][]object.Object {
	n = max(n, 1)
	groups := make([][]object.Object, n)
	for i, o := range objs {
		groups[i%n] = append(groups[i%n], o)
	}
	return groups
}

// SlicePartitions returns one partition per group with IDs 1..len(groups).
func SlicePartitions(groups ...[]object.Object) []engine.Partition {
	parts := make([]engine.Partition, len(groups))
	for i, g := range groups {
		parts[i] = engine.Partition{
			ID:   uint32(i + 1),
			Size: len(g),
			Open: func(context.Context) (object.Iterator, error) {
				return object.NewSliceIterator(g...), nil
			},
		}
	}
	return parts
}

// BruteForceKNN returns the exact k nearest neighbors of query.
func BruteForceKNN(query object.Object, objs []object.Object, k int) []rank.RankedObject {
	c := rank.NewCollection(k)
	for _, o := range objs {
		c.Add(rank.New(o, query.Distance(o)))
	}
	return c.Items()
}

// BruteForceRange returns every object within radius of query, nearest first.
func BruteForceRange(query object.Object, objs []object.Object, radius float32) []rank.RankedObject {
	c := rank.NewCollection(0)
	for _, o := range objs {
		if d := query.Distance(o); d <= radius {
			c.Add(rank.New(o, d))
		}
	}
	return c.Items()
}

// ComputeRecall computes the fraction of the ground truth found in
// approximate, compared by object ID.
func ComputeRecall(groundTruth, approximate []rank.RankedObject) float64 {
	if len(groundTruth) == 0 {
		if len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	truthSet := make(map[object.ID]struct{}, len(groundTruth))
	for _, r := range groundTruth {
		truthSet[r.ID()] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.ID()]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(groundTruth))
}

// Locators returns the locators of items in order.
func Locators(items []rank.RankedObject) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Object.Locator()
	}
	return out
}
