// Package index defines the contracts a storage structure implements to be
// searchable by query operations, and the cursor used to scan it.
//
// # Search Cursor
//
// A Search walks a Source supplied by the storage layer in both directions
// and transparently skips objects outside its key restriction:
//
//	s := index.NewRangeSearch(src, cmp, &from, &to)
//	defer s.Close()
//	for s.Next() {
//	    use(s.Current())
//	}
//	if err := s.Err(); err != nil { ... }
//
// Passing the same pointer as both bounds turns the range into an equality
// lookup. A nil bound leaves that side unrestricted.
//
// Clone forks an independent cursor at the same position; DualSearch uses it
// to expand outward from a start key in both directions at once.
//
// # Index Contracts
//
//   - Index: size, full scan, key-set and range searches
//   - OrderedIndex: searches anchored at a start key
//   - ModifiableIndex: insertion, removal through Search.Remove, and
//     explicit resource release
package index
