// Package s3 provides an Amazon S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("answers/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	spool := transport.NewSpool(store)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - CRC32C checksums on single-request uploads
//   - Multipart uploads for large partial answers
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
