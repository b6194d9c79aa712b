// Package testutil provides testing utilities for simsearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vector objects, splitting them
// into partitions, computing exact answers and verifying recall.
//
// # Random Objects
//
//	rng := testutil.NewRNG(seed)
//	objs := testutil.Objects(rng.UniformVectors(1000, 16))
//	parts := testutil.SlicePartitions(testutil.Split(objs, 4)...)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.BruteForceKNN(query, objs, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, slices.Collect(op.Answer()))
package testutil
