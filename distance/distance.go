// Package distance provides the vector distance functions used by object.Vector.
package distance

import (
	"fmt"
	"math"
	"math/bits"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// It is monotone with L2 but does not satisfy the triangle inequality, so it
// must not be combined with pivot-based pruning.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float32) float32 {
	return float32(math.Sqrt(float64(SquaredL2(a, b))))
}

// L1 calculates the Manhattan distance between two vectors.
func L1(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += float32(math.Abs(float64(a[i] - b[i])))
	}
	return sum
}

// Chebyshev calculates the L-infinity distance between two vectors.
func Chebyshev(a, b []float32) float32 {
	var maxDiff float32
	for i := range a {
		d := float32(math.Abs(float64(a[i] - b[i])))
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Angular calculates the angle (in radians) between two vectors.
// Zero-length vectors are at distance pi/2 from everything.
func Angular(a, b []float32) float32 {
	na := Dot(a, a)
	nb := Dot(b, b)
	if na == 0 || nb == 0 {
		return math.Pi / 2
	}
	cos := float64(Dot(a, b)) / math.Sqrt(float64(na)*float64(nb))
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return float32(math.Acos(cos))
}

// Hamming calculates the Hamming distance between two byte slices.
// Assumes slices are the same length.
// Returns the count of differing bits as a float32.
func Hamming(a, b []byte) float32 {
	var n int
	for i := range a {
		n += bits.OnesCount8(a[i] ^ b[i])
	}
	return float32(n)
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricL1
	MetricChebyshev
	MetricAngular
	MetricSquaredL2
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricL1:
		return "L1"
	case MetricChebyshev:
		return "Chebyshev"
	case MetricAngular:
		return "Angular"
	case MetricSquaredL2:
		return "SquaredL2"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// IsMetric reports whether m satisfies the triangle inequality.
func (m Metric) IsMetric() bool {
	return m != MetricSquaredL2
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return L2, nil
	case MetricL1:
		return L1, nil
	case MetricChebyshev:
		return Chebyshev, nil
	case MetricAngular:
		return Angular, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
