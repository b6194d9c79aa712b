// Package engine drives the evaluation of operations on the caller side.
//
// An Executor evaluates an operation over one iterator or over a set of
// partitions. Partition evaluation follows the clone-then-merge protocol:
//
//   - every partition gets its own clone of the operation without answer
//   - clones are evaluated concurrently, bounded by a resource.Controller
//   - partial answers are merged into the caller's operation one at a time
//     through UpdateFrom
//
// Partitioned operations additionally receive the partition ID so they can
// keep per-partition sub-answers. Approximate operations stop dispatching new
// partitions once their stop condition is reached on the merged counters; if
// a partition is skipped the merged answer carries no radius guarantee.
//
// # Incremental Queries
//
// Incremental returns an iterator that yields the answer of an incremental
// kNN query round after round until no objects are pending:
//
//	for item, err := range exec.Incremental(ctx, op, it) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(item.Distance, item.Object.Locator())
//	}
//
// # Key Proximity
//
// NearestKeys walks an ordered index outward from a start key and returns the
// objects whose keys are nearest to it.
package engine
