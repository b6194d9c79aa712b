package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/simsearch/blobstore"
	"github.com/hupe1980/simsearch/internal/resource"
	"github.com/hupe1980/simsearch/operation"
)

// ErrInvalidPeer is returned for empty peer names or names containing '/'.
var ErrInvalidPeer = errors.New("invalid peer name")

// Spool exchanges partial answers through a blob store.
// Safe for concurrent use if the store is.
type Spool struct {
	store   blobstore.Store
	encoder *Encoder
	rc      *resource.Controller
	commits CommitLog
	logger  *slog.Logger
}

// SpoolOption configures a Spool.
type SpoolOption func(*Spool)

// WithEncoder sets the encoder used by Put.
func WithEncoder(e *Encoder) SpoolOption {
	return func(s *Spool) { s.encoder = e }
}

// WithController bounds the memory held by frames being merged and the read
// bandwidth of Collect.
func WithController(rc *resource.Controller) SpoolOption {
	return func(s *Spool) { s.rc = rc }
}

// WithCommitLog makes Put claim the peer's slot in log before writing the
// frame. A peer then publishes at most once per operation, and Collect only
// merges committed peers.
func WithCommitLog(log CommitLog) SpoolOption {
	return func(s *Spool) { s.commits = log }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SpoolOption {
	return func(s *Spool) { s.logger = l }
}

// NewSpool creates a Spool over store.
func NewSpool(store blobstore.Store, optFns ...SpoolOption) *Spool {
	s := &Spool{
		store:   store,
		encoder: NewEncoder(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Key returns the blob name of the partial answer of op produced by peer.
func Key(op operation.Operation, peer string) string {
	return prefix(op) + peer
}

func prefix(op operation.Operation) string {
	return op.ID().String() + "/"
}

// Put stores the partial answer op computed by peer. Without a CommitLog an
// earlier answer of peer is replaced; with one, Put fails with
// ErrAlreadyCommitted.
func (s *Spool) Put(ctx context.Context, peer string, op operation.Operation) error {
	if peer == "" || strings.Contains(peer, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPeer, peer)
	}
	frame, err := s.encoder.Encode(op)
	if err != nil {
		return err
	}
	key := Key(op, peer)
	if s.commits != nil {
		if err := s.commits.Commit(ctx, op.ID().String(), peer); err != nil {
			return fmt.Errorf("transport: commit %s: %w", key, err)
		}
	}
	if err := s.store.Put(ctx, key, frame); err != nil {
		err = fmt.Errorf("transport: put %s: %w", key, err)
		if s.commits != nil {
			if rerr := s.commits.Revoke(ctx, op.ID().String(), peer); rerr != nil {
				err = errors.Join(err, fmt.Errorf("transport: revoke %s: %w", key, rerr))
			}
		}
		return err
	}
	s.logger.DebugContext(ctx, "spooled partial answer",
		slog.String("operation_id", op.ID().String()),
		slog.String("kind", op.Kind()),
		slog.String("peer", peer),
		slog.Int("bytes", len(frame)),
	)
	return nil
}

// Peers returns the peers that spooled a partial answer for op. With a
// CommitLog these are the committed peers.
func (s *Spool) Peers(ctx context.Context, op operation.Operation) ([]string, error) {
	if s.commits != nil {
		peers, err := s.commits.Committed(ctx, op.ID().String())
		if err != nil {
			return nil, fmt.Errorf("transport: committed %s: %w", op.ID(), err)
		}
		return peers, nil
	}
	return s.listPeers(ctx, op)
}

func (s *Spool) listPeers(ctx context.Context, op operation.Operation) ([]string, error) {
	names, err := s.store.List(ctx, prefix(op))
	if err != nil {
		return nil, fmt.Errorf("transport: list %s: %w", prefix(op), err)
	}
	peers := make([]string, 0, len(names))
	for _, name := range names {
		peers = append(peers, strings.TrimPrefix(name, prefix(op)))
	}
	return peers, nil
}

// Collect merges every spooled partial answer of op into op and returns the
// number merged. Partials are merged in peer name order; the first failure
// stops the merge. With a CommitLog, blobs of uncommitted peers are ignored
// and a committed peer whose frame is not written yet is skipped.
func (s *Spool) Collect(ctx context.Context, op operation.Operation) (int, error) {
	peers, err := s.Peers(ctx, op)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, peer := range peers {
		if err := ctx.Err(); err != nil {
			return merged, err
		}
		name := Key(op, peer)
		if err := s.merge(ctx, op, name); err != nil {
			if s.commits != nil && errors.Is(err, blobstore.ErrNotFound) {
				s.logger.DebugContext(ctx, "committed partial answer not written yet",
					slog.String("operation_id", op.ID().String()),
					slog.String("peer", peer),
				)
				continue
			}
			s.logger.WarnContext(ctx, "partial answer merge failed",
				slog.String("operation_id", op.ID().String()),
				slog.String("blob", name),
				slog.Any("error", err),
			)
			return merged, err
		}
		merged++
	}

	s.logger.DebugContext(ctx, "collected partial answers",
		slog.String("operation_id", op.ID().String()),
		slog.String("kind", op.Kind()),
		slog.Int("merged", merged),
	)
	return merged, nil
}

func (s *Spool) merge(ctx context.Context, op operation.Operation, name string) error {
	frame, release, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	partial, err := Decode(frame)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Name = name
		}
		return err
	}
	if partial.ID() != op.ID() {
		return &DecodeError{Name: name, Err: fmt.Errorf("%w: %s", ErrIdentityMismatch, partial.ID())}
	}
	return op.UpdateFrom(partial)
}

func (s *Spool) read(ctx context.Context, name string) ([]byte, func(), error) {
	blob, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: open %s: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()
	if err := s.rc.AcquireMemory(size); err != nil {
		return nil, nil, fmt.Errorf("transport: read %s: %w", name, err)
	}
	release := func() { s.rc.ReleaseMemory(size) }

	if size == 0 {
		return nil, release, nil
	}
	r, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("transport: read %s: %w", name, err)
	}
	defer r.Close()

	frame, err := io.ReadAll(resource.NewRateLimitedReader(ctx, r, s.rc))
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("transport: read %s: %w", name, err)
	}
	return frame, release, nil
}

// Clear deletes every spooled partial answer of op and revokes the commits of
// its peers.
func (s *Spool) Clear(ctx context.Context, op operation.Operation) error {
	peers, err := s.listPeers(ctx, op)
	if err != nil {
		return err
	}
	var errs []error
	for _, peer := range peers {
		if err := s.store.Delete(ctx, Key(op, peer)); err != nil {
			errs = append(errs, fmt.Errorf("transport: delete %s: %w", Key(op, peer), err))
		}
	}
	if s.commits == nil {
		return errors.Join(errs...)
	}

	committed, err := s.commits.Committed(ctx, op.ID().String())
	if err != nil {
		return errors.Join(append(errs, fmt.Errorf("transport: committed %s: %w", op.ID(), err))...)
	}
	for _, peer := range committed {
		if err := s.commits.Revoke(ctx, op.ID().String(), peer); err != nil {
			errs = append(errs, fmt.Errorf("transport: revoke %s: %w", Key(op, peer), err))
		}
	}
	return errors.Join(errs...)
}
