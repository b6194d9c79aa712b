// Package memindex provides in-memory implementations of the index contracts.
//
//   - Sorted: ordered by a key, searches are positioned by binary search
//   - List: insertion ordered, organized in fixed-size blocks whose reads are
//     counted, with optional soft/hard capacity and duplicate detection
//
// Both are safe for concurrent use. Individual reads and removals are atomic;
// a traversal as a whole is not isolated from concurrent modification.
package memindex
