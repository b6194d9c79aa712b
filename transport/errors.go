package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic is returned when a frame does not start with the frame magic.
	ErrBadMagic = errors.New("bad frame magic")
	// ErrUnsupportedVersion is returned for frames of an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported frame version")
	// ErrUnknownCodec is returned when the frame names a codec that is not built in.
	ErrUnknownCodec = errors.New("unknown codec")
	// ErrChecksum is returned when the frame body fails its CRC32C check.
	ErrChecksum = errors.New("frame checksum mismatch")
	// ErrTruncated is returned when a frame ends before its header does.
	ErrTruncated = errors.New("truncated frame")
	// ErrIdentityMismatch is returned when a spooled partial answer belongs
	// to another operation.
	ErrIdentityMismatch = errors.New("partial answer belongs to another operation")
)

// DecodeError describes a frame that could not be decoded.
type DecodeError struct {
	// Name is the blob name when the frame came from a Spool.
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("transport: decode: %v", e.Err)
	}
	return fmt.Sprintf("transport: decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
