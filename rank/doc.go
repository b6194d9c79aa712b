// Package rank implements the ranked answer of similarity queries.
//
// A Collection keeps RankedObjects sorted by distance and, when it has a
// capacity, never grows beyond it: a new object is admitted into a full
// collection only if it is strictly closer than the current farthest one,
// which is then evicted.
//
// Equal distances are ordered by object ID (byte order), then by locator, then
// by insertion order. Objects with a non-zero ID are kept at most once, so
// partial answers that overlap can be merged without duplicates.
//
// Collections are not safe for concurrent use. Evaluate into one collection
// per goroutine and Merge them afterwards.
package rank
