package object

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/simsearch/distance"
)

// Compile time checks.
var (
	_ Object            = (*Vector)(nil)
	_ Cloner            = (*Vector)(nil)
	_ SurplusClearer    = (*Vector)(nil)
	_ PrecomputedFilter = (*Vector)(nil)
	_ DataEqualer       = (*Vector)(nil)
	_ Recordable        = (*Vector)(nil)
)

// Vector is a float32 vector object compared under a distance.Metric.
//
// A Vector may carry precomputed distances to a fixed list of pivots. They
// enable ExcludeUsingPrecomputed and are the "surplus data" removed by
// ClearSurplusData.
type Vector struct {
	id      ID
	locator string
	data    []float32
	metric  distance.Metric
	fn      distance.Func
	pivots  []float32
}

// VectorOption configures a Vector.
type VectorOption func(*Vector)

// WithID sets the object ID. By default a random ID is assigned.
func WithID(id ID) VectorOption {
	return func(v *Vector) {
		v.id = id
	}
}

// WithLocator sets the locator string.
func WithLocator(locator string) VectorOption {
	return func(v *Vector) {
		v.locator = locator
	}
}

// WithMetric sets the distance metric (default distance.MetricL2).
func WithMetric(m distance.Metric) VectorOption {
	return func(v *Vector) {
		v.metric = m
	}
}

// WithPivotDistances sets precomputed distances to pivots.
func WithPivotDistances(d []float32) VectorOption {
	return func(v *Vector) {
		v.pivots = d
	}
}

// NewVector creates a vector object. The data slice is retained.
func NewVector(data []float32, optFns ...VectorOption) *Vector {
	v := &Vector{
		id:     NewID(),
		data:   data,
		metric: distance.MetricL2,
	}
	for _, fn := range optFns {
		fn(v)
	}
	fn, err := distance.Provider(v.metric)
	if err != nil {
		v.metric = distance.MetricL2
		fn = distance.L2
	}
	v.fn = fn
	return v
}

func (v *Vector) ID() ID          { return v.id }
func (v *Vector) Locator() string { return v.locator }

// Data returns the underlying vector. It must not be modified.
func (v *Vector) Data() []float32 { return v.data }

// Metric returns the metric the vector is compared with.
func (v *Vector) Metric() distance.Metric { return v.metric }

// PivotDistances returns the precomputed pivot distances, if any.
func (v *Vector) PivotDistances() []float32 { return v.pivots }

// Distance returns the distance to other, or +Inf when other is not a
// compatible vector.
func (v *Vector) Distance(other Object) float32 {
	o, ok := other.(*Vector)
	if !ok || len(o.data) != len(v.data) {
		return float32(math.Inf(1))
	}
	return v.fn(v.data, o.data)
}

// ComputePivotDistances fills the precomputed distances to pivots.
func (v *Vector) ComputePivotDistances(pivots []*Vector) {
	d := make([]float32, len(pivots))
	for i, p := range pivots {
		d[i] = v.Distance(p)
	}
	v.pivots = d
}

// ExcludeUsingPrecomputed applies the pivot lower bound |d(q,p) - d(o,p)| > r.
func (v *Vector) ExcludeUsingPrecomputed(query Object, radius float32) bool {
	q, ok := query.(*Vector)
	if !ok || !v.metric.IsMetric() || len(v.pivots) == 0 || len(q.pivots) != len(v.pivots) {
		return false
	}
	for i, d := range v.pivots {
		if float32(math.Abs(float64(q.pivots[i]-d))) > radius {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (v *Vector) Clone() Object {
	c := *v
	c.data = slices.Clone(v.data)
	c.pivots = slices.Clone(v.pivots)
	return &c
}

// ClearSurplusData drops the precomputed pivot distances.
func (v *Vector) ClearSurplusData() {
	v.pivots = nil
}

// DataEqual reports whether other is a vector with the same metric and data.
func (v *Vector) DataEqual(other Object) bool {
	o, ok := other.(*Vector)
	if !ok {
		return false
	}
	return v.metric == o.metric && slices.Equal(v.data, o.data)
}

// DataHash hashes metric and vector data.
func (v *Vector) DataHash() uint64 {
	h := xxhash.New()
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v.metric))
	_, _ = h.Write(buf[:])
	for _, f := range v.data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Record returns the wire form.
func (v *Vector) Record() (Record, error) {
	return Record{
		Kind:    KindVector,
		ID:      idString(v.id),
		Locator: v.locator,
		Vector:  slices.Clone(v.data),
		Metric:  int(v.metric),
		Pivots:  slices.Clone(v.pivots),
	}, nil
}

func decodeVector(r Record) (Object, error) {
	id, err := parseID(r.ID)
	if err != nil {
		return nil, err
	}
	return NewVector(r.Vector,
		WithID(id),
		WithLocator(r.Locator),
		WithMetric(distance.Metric(r.Metric)),
		WithPivotDistances(r.Pivots),
	), nil
}
