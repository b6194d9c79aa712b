// Package operation implements the query and mutation operations evaluated
// against object collections.
//
// An operation is created once per request, evaluated over one or more
// candidate iterators and finished with EndOperation. Partial answers
// computed on clones (for example per partition or per peer) are folded back
// with UpdateFrom:
//
//	op, _ := operation.NewKNN(query, 10)
//	part := op.Clone(false).(*operation.KNN)
//	_, _ = part.Evaluate(it)
//	_ = op.UpdateFrom(part)
//	op.EndOperation()
//
//	for item := range op.Answer() {
//	    fmt.Println(item.Object.Locator(), item.Distance)
//	}
//
// Operations are not safe for concurrent use. Evaluate concurrently into
// clones and merge them from a single goroutine.
package operation
