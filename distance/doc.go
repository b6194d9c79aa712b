// Package distance provides vector distance calculations.
//
// # Supported Metrics
//
//   - MetricL2: Euclidean distance (default)
//   - MetricL1: Manhattan distance
//   - MetricChebyshev: L-infinity distance
//   - MetricAngular: angle between vectors
//   - MetricSquaredL2: squared Euclidean (not a metric; no pivot pruning)
//
// # Usage
//
//	fn, _ := distance.Provider(distance.MetricL2)
//	d := fn(a, b)
package distance
