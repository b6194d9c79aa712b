package object

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Built-in record kinds.
const (
	KindVector = "vector"
	KindMeta   = "meta"
	KindNoData = "nodata"
)

// Record is the codec-neutral wire form of an object.
type Record struct {
	Kind        string    `json:"kind" msgpack:"kind"`
	ID          string    `json:"id,omitempty" msgpack:"id,omitempty"`
	Locator     string    `json:"locator,omitempty" msgpack:"locator,omitempty"`
	Vector      []float32 `json:"vector,omitempty" msgpack:"vector,omitempty"`
	Metric      int       `json:"metric,omitempty" msgpack:"metric,omitempty"`
	Pivots      []float32 `json:"pivots,omitempty" msgpack:"pivots,omitempty"`
	Subs        []Record  `json:"subs,omitempty" msgpack:"subs,omitempty"`
	Aggregation string    `json:"aggregation,omitempty" msgpack:"aggregation,omitempty"`
	Weights     []float32 `json:"weights,omitempty" msgpack:"weights,omitempty"`
}

// Recordable is implemented by objects with a wire form.
type Recordable interface {
	Record() (Record, error)
}

// Decoder rebuilds an object from its record.
type Decoder func(Record) (Object, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]Decoder{}
)

// decodeMeta calls FromRecord, so the built-ins cannot sit in the
// decoders literal.
func init() {
	decoders[KindVector] = decodeVector
	decoders[KindMeta] = decodeMeta
	decoders[KindNoData] = decodeNoData
}

// RegisterDecoder registers the decoder for a custom record kind.
func RegisterDecoder(kind string, dec Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[kind] = dec
}

// ToRecord returns the wire form of o.
func ToRecord(o Object) (Record, error) {
	r, ok := o.(Recordable)
	if !ok {
		return Record{}, fmt.Errorf("%w: %T", ErrNotRecordable, o)
	}
	return r.Record()
}

// FromRecord decodes r with the decoder registered for its kind.
func FromRecord(r Record) (Object, error) {
	decodersMu.RLock()
	dec, ok := decoders[r.Kind]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	return dec(r)
}

func idString(id ID) string {
	if id == NilID {
		return ""
	}
	return id.String()
}

func parseID(s string) (ID, error) {
	if s == "" {
		return NilID, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return NilID, fmt.Errorf("invalid object id %q: %w", s, err)
	}
	return id, nil
}
