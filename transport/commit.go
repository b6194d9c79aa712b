package transport

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrAlreadyCommitted is returned when a peer publishes a second partial
// answer for the same operation through a Spool with a CommitLog.
var ErrAlreadyCommitted = errors.New("partial answer already committed")

// CommitLog records which peers published a partial answer of an operation.
//
// Commit must be atomic: of two commits of the same operation and peer, the
// second fails with ErrAlreadyCommitted. S3-style stores lack that
// compare-and-swap, so a Spool with a CommitLog claims the slot in the log
// before it writes the frame.
type CommitLog interface {
	// Commit claims the slot of peer for the operation opID.
	Commit(ctx context.Context, opID, peer string) error
	// Committed returns the peers that committed for opID, sorted by name.
	Committed(ctx context.Context, opID string) ([]string, error)
	// Revoke releases the slot of peer. Revoking a missing slot is not an error.
	Revoke(ctx context.Context, opID, peer string) error
}

// MemoryCommitLog is an in-process CommitLog.
type MemoryCommitLog struct {
	mu    sync.Mutex
	peers map[string]map[string]struct{}
}

// NewMemoryCommitLog creates an empty MemoryCommitLog.
func NewMemoryCommitLog() *MemoryCommitLog {
	return &MemoryCommitLog{peers: make(map[string]map[string]struct{})}
}

var _ CommitLog = (*MemoryCommitLog)(nil)

// Commit implements CommitLog.
func (l *MemoryCommitLog) Commit(_ context.Context, opID, peer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.peers[opID]
	if !ok {
		set = make(map[string]struct{})
		l.peers[opID] = set
	}
	if _, ok := set[peer]; ok {
		return ErrAlreadyCommitted
	}
	set[peer] = struct{}{}
	return nil
}

// Committed implements CommitLog.
func (l *MemoryCommitLog) Committed(_ context.Context, opID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	peers := make([]string, 0, len(l.peers[opID]))
	for peer := range l.peers[opID] {
		peers = append(peers, peer)
	}
	slices.Sort(peers)
	return peers, nil
}

// Revoke implements CommitLog.
func (l *MemoryCommitLog) Revoke(_ context.Context, opID, peer string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.peers[opID], peer)
	if len(l.peers[opID]) == 0 {
		delete(l.peers, opID)
	}
	return nil
}
