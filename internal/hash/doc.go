// Package hash provides the CRC32-Castagnoli checksum shared by the frame
// format of spooled partial answers and the S3 upload path.
//
// S3 expects the checksum big-endian and base64 encoded; frames store it
// little-endian next to the compressed block:
//
//	sum := hash.CRC32C(block)
//	ok := hash.Verify(block, sum)
package hash
