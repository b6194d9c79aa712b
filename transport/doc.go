// Package transport moves partial answers of an operation between peers.
//
// An Encoder turns an operation into a self-describing frame:
//
//	magic "SSOP" | version u8 | compression u8 | codec name (u8 len + bytes) |
//	crc32c u32 | compressed snapshot block
//
// Decode restores the operation from a frame, keeping its identity, so a
// coordinator can merge the partial answer into its own copy with
// UpdateFrom.
//
// A Spool stores frames in a blobstore.Store under "<operation-id>/<peer>"
// and merges all partial answers of an operation with Collect.
package transport
