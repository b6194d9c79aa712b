package object

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

var (
	_ Composite   = (*Meta)(nil)
	_ DataEqualer = (*Meta)(nil)
	_ Recordable  = (*Meta)(nil)
)

// Meta is a composite object whose distance aggregates the distances of its
// sub-objects to the corresponding sub-objects of another Meta.
type Meta struct {
	id      ID
	locator string
	subs    []Object
	agg     Aggregation
}

// NewMeta creates a meta object. A nil aggregation means Sum.
func NewMeta(id ID, locator string, agg Aggregation, subs ...Object) *Meta {
	if agg == nil {
		agg = Sum
	}
	return &Meta{id: id, locator: locator, subs: subs, agg: agg}
}

func (m *Meta) ID() ID                   { return m.id }
func (m *Meta) Locator() string          { return m.locator }
func (m *Meta) SubObjects() []Object     { return m.subs }
func (m *Meta) Aggregation() Aggregation { return m.agg }

// Distance returns the aggregated distance, or +Inf for incompatible objects.
func (m *Meta) Distance(other Object) float32 {
	d, _ := m.SubDistances(other)
	return d
}

// SubDistances returns the aggregated and the per-sub-object distances.
func (m *Meta) SubDistances(other Object) (float32, []float32) {
	o, ok := other.(*Meta)
	if !ok || len(o.subs) != len(m.subs) {
		return float32(math.Inf(1)), nil
	}
	subs := make([]float32, len(m.subs))
	for i, s := range m.subs {
		subs[i] = s.Distance(o.subs[i])
	}
	return m.agg.Aggregate(subs), subs
}

// Clone deep-copies every sub-object that supports it.
func (m *Meta) Clone() Object {
	subs := make([]Object, len(m.subs))
	for i, s := range m.subs {
		subs[i] = Clone(s)
	}
	return &Meta{id: m.id, locator: m.locator, subs: subs, agg: m.agg}
}

// ClearSurplusData clears every sub-object.
func (m *Meta) ClearSurplusData() {
	for _, s := range m.subs {
		if c, ok := s.(SurplusClearer); ok {
			c.ClearSurplusData()
		}
	}
}

// DataEqual compares sub-objects pairwise.
func (m *Meta) DataEqual(other Object) bool {
	o, ok := other.(*Meta)
	if !ok || len(o.subs) != len(m.subs) || o.agg.Name() != m.agg.Name() {
		return false
	}
	for i := range m.subs {
		if !DataEqual(m.subs[i], o.subs[i]) {
			return false
		}
	}
	return true
}

// DataHash combines the sub-object hashes.
func (m *Meta) DataHash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(m.agg.Name())
	var buf [8]byte
	for _, s := range m.subs {
		var sh uint64
		if e, ok := s.(DataEqualer); ok {
			sh = e.DataHash()
		} else {
			id := s.ID()
			sh = xxhash.Sum64(id[:])
		}
		for i := range buf {
			buf[i] = byte(sh >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Record returns the wire form. It fails if any sub-object has none.
func (m *Meta) Record() (Record, error) {
	r := Record{
		Kind:        KindMeta,
		ID:          idString(m.id),
		Locator:     m.locator,
		Aggregation: m.agg.Name(),
		Weights:     AggregationWeights(m.agg),
	}
	r.Subs = make([]Record, 0, len(m.subs))
	for i, s := range m.subs {
		sr, err := ToRecord(s)
		if err != nil {
			return Record{}, fmt.Errorf("meta sub-object %d: %w", i, err)
		}
		r.Subs = append(r.Subs, sr)
	}
	return r, nil
}

func decodeMeta(r Record) (Object, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	agg, err := AggregationByName(r.Aggregation, r.Weights)
	if err != nil {
		return nil, err
	}
	subs := make([]Object, 0, len(r.Subs))
	for _, sr := range r.Subs {
		s, err := FromRecord(sr)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return NewMeta(id, r.Locator, agg, subs...), nil
}
