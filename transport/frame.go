package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/simsearch/codec"
	"github.com/hupe1980/simsearch/internal/hash"
	"github.com/hupe1980/simsearch/operation"
)

const (
	// Version is the current frame version.
	Version uint8 = 1

	magic = "SSOP"
)

// Encoder writes operations as frames.
type Encoder struct {
	codec       codec.Codec
	compression codec.Compression
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithCodec selects the snapshot codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) EncoderOption {
	return func(e *Encoder) { e.codec = c }
}

// WithCompression selects the block compression. Defaults to zstd.
func WithCompression(c codec.Compression) EncoderOption {
	return func(e *Encoder) { e.compression = c }
}

// NewEncoder creates an Encoder.
func NewEncoder(optFns ...EncoderOption) *Encoder {
	e := &Encoder{
		codec:       codec.Default,
		compression: codec.CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

// Codec returns the snapshot codec.
func (e *Encoder) Codec() codec.Codec { return e.codec }

// Compression returns the block compression.
func (e *Encoder) Compression() codec.Compression { return e.compression }

// Encode captures op and writes it as a frame.
func (e *Encoder) Encode(op operation.Operation) ([]byte, error) {
	snap, err := operation.TakeSnapshot(op)
	if err != nil {
		return nil, fmt.Errorf("transport: encode: %w", err)
	}
	body, err := e.codec.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("transport: encode %s: %w", e.codec.Name(), err)
	}
	block, err := e.compression.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("transport: compress %s: %w", e.compression, err)
	}

	name := e.codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("transport: codec name %q too long", name)
	}

	frame := make([]byte, 0, len(magic)+3+len(name)+4+len(block))
	frame = append(frame, magic...)
	frame = append(frame, Version, uint8(e.compression), uint8(len(name)))
	frame = append(frame, name...)
	frame = binary.LittleEndian.AppendUint32(frame, hash.CRC32C(block))
	frame = append(frame, block...)
	return frame, nil
}

// Decode restores the operation stored in frame. The codec is selected by
// the name recorded in the frame header.
func Decode(frame []byte) (operation.Operation, error) {
	snap, err := decodeSnapshot(frame)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	op, err := operation.FromSnapshot(snap)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return op, nil
}

func decodeSnapshot(frame []byte) (*operation.Snapshot, error) {
	if len(frame) < len(magic)+3 {
		return nil, ErrTruncated
	}
	if string(frame[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	rest := frame[len(magic):]
	if rest[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rest[0])
	}
	compression := codec.Compression(rest[1])
	nameLen := int(rest[2])
	rest = rest[3:]
	if len(rest) < nameLen+4 {
		return nil, ErrTruncated
	}
	name := string(rest[:nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	sum := binary.LittleEndian.Uint32(rest[nameLen:])
	block := rest[nameLen+4:]
	if !hash.Verify(block, sum) {
		return nil, ErrChecksum
	}

	body, err := compression.Decompress(block)
	if err != nil {
		return nil, err
	}
	var snap operation.Snapshot
	if err := c.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &snap, nil
}
