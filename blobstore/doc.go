// Package blobstore provides storage for partial answers exchanged between
// peers of a distributed evaluation.
//
// Store is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process maps, for tests and single-process setups
//   - LocalStore: local filesystem (atomic writes via rename)
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with checksummed uploads
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// For cloud backends, implement ReadRange for efficient partial reads:
//
//	type Blob interface {
//	    io.Closer
//	    Size() int64
//	    ReadAt(ctx, p, off) (int, error)
//	    ReadRange(ctx, off, len) (io.ReadCloser, error)
//	}
package blobstore
