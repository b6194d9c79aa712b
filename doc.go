// Package simsearch evaluates similarity queries in metric spaces.
//
// Objects are compared only through their distance function, so the same
// operations work for vectors, composite objects or any custom type that
// implements object.Object. Operations (k-nearest neighbors, range queries,
// approximate and incremental variants, listings and mutations) are values:
// they carry their arguments and their answer, can be cloned, evaluated over
// independent partitions and merged again.
//
// # Quick Start
//
//	idx := memindex.NewSortedByLocator()
//	for _, v := range vectors {
//	    _ = idx.Add(object.NewVector(v.Data, object.WithLocator(v.Name)))
//	}
//
//	s := simsearch.New(simsearch.WithConcurrency(4))
//	_ = simsearch.AddIndex(s, 1, idx)
//
//	op, _ := operation.NewKNN(query, 10)
//	if err := s.Search(ctx, op); err != nil {
//	    log.Fatal(err)
//	}
//	for item := range op.Answer() {
//	    fmt.Println(item.Object.Locator(), item.Distance)
//	}
//
// # Distributed Evaluation
//
// Peers evaluate clones of the same operation over their own partitions and
// publish the partial answers to a shared blob store. The coordinator merges
// them; the merged answer equals the answer of a single evaluation over all
// data:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("answers/"))
//	peer := simsearch.New(simsearch.WithBlobStore(store))
//	_ = peer.Publish(ctx, "peer-1", op)
//
//	coordinator := simsearch.New(simsearch.WithBlobStore(store))
//	n, err := coordinator.Gather(ctx, op)
//
// # Approximate Queries
//
// ApproxKNN and ApproxRange stop early once a stop condition is reached.
// The guaranteed radius reports how far the answer is known to be exact:
// +Inf after a complete scan, -1 when nothing is guaranteed.
//
// # Observability
//
// Logging uses log/slog through Logger; metrics are reported through
// MetricsCollector. Both default to no-ops.
package simsearch
