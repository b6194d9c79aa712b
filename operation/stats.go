package operation

import "fmt"

// Stats holds per-query counters. Partial operations sum their counters
// when merged.
type Stats struct {
	DistanceComputations int64 `json:"distance_computations" msgpack:"distance_computations"`
	ObjectsAccessed      int64 `json:"objects_accessed" msgpack:"objects_accessed"`
	BlockReads           int64 `json:"block_reads" msgpack:"block_reads"`
}

// Add sums other into s.
func (s *Stats) Add(other Stats) {
	s.DistanceComputations += other.DistanceComputations
	s.ObjectsAccessed += other.ObjectsAccessed
	s.BlockReads += other.BlockReads
}

// Reset zeroes every counter.
func (s *Stats) Reset() { *s = Stats{} }

func (s Stats) String() string {
	return fmt.Sprintf("distances=%d objects=%d blocks=%d",
		s.DistanceComputations, s.ObjectsAccessed, s.BlockReads)
}
