package operation

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

// Snapshot is the codec-neutral state of an operation: its identity, the
// arguments needed to rebuild it and its current answer.
type Snapshot struct {
	Kind          string               `json:"kind" msgpack:"kind"`
	ID            string               `json:"id" msgpack:"id"`
	Arguments     []ArgValue           `json:"arguments" msgpack:"arguments"`
	ErrorCode     ErrorCode            `json:"error_code" msgpack:"error_code"`
	AnswerType    AnswerType           `json:"answer_type" msgpack:"answer_type"`
	Parameters    map[string]any       `json:"parameters,omitempty" msgpack:"parameters,omitempty"`
	Stats         Stats                `json:"stats" msgpack:"stats"`
	Answer        []RankedRecord       `json:"answer,omitempty" msgpack:"answer,omitempty"`
	Objects       []object.Record      `json:"objects,omitempty" msgpack:"objects,omitempty"`
	Partitions    *PartitionsRecord    `json:"partitions,omitempty" msgpack:"partitions,omitempty"`
	Approximation *ApproximationRecord `json:"approximation,omitempty" msgpack:"approximation,omitempty"`
	Returned      int                  `json:"returned,omitempty" msgpack:"returned,omitempty"`
	Delivered     []string             `json:"delivered,omitempty" msgpack:"delivered,omitempty"`
	Inserted      int                  `json:"inserted,omitempty" msgpack:"inserted,omitempty"`
	Outcome       ErrorCode            `json:"outcome,omitempty" msgpack:"outcome,omitempty"`
}

// RankedRecord is the wire form of a rank.RankedObject.
type RankedRecord struct {
	Object       object.Record `json:"object" msgpack:"object"`
	Distance     float32       `json:"distance" msgpack:"distance"`
	SubDistances []float32     `json:"sub_distances,omitempty" msgpack:"sub_distances,omitempty"`
}

// PartitionsRecord holds the per-partition answers of a partitioned query.
type PartitionsRecord struct {
	Current uint32                  `json:"current" msgpack:"current"`
	Set     bool                    `json:"set" msgpack:"set"`
	Answers []PartitionAnswerRecord `json:"answers,omitempty" msgpack:"answers,omitempty"`
}

// PartitionAnswerRecord is the sub-answer of one partition.
type PartitionAnswerRecord struct {
	ID     uint32         `json:"id" msgpack:"id"`
	Answer []RankedRecord `json:"answer" msgpack:"answer"`
}

// ApproximationRecord holds the guarantees of an approximate query.
type ApproximationRecord struct {
	DataSize  int      `json:"data_size,omitempty" msgpack:"data_size,omitempty"`
	Radius    float64  `json:"radius" msgpack:"radius"`
	Special   string   `json:"special,omitempty" msgpack:"special,omitempty"`
	RadiusSet bool     `json:"radius_set" msgpack:"radius_set"`
	Visited   []uint32 `json:"visited,omitempty" msgpack:"visited,omitempty"`
}

// stateful is implemented by operations with state beyond their arguments.
type stateful interface {
	snapshotState(s *Snapshot) error
	restoreState(s *Snapshot) error
}

// TakeSnapshot captures op.
func TakeSnapshot(op Operation) (*Snapshot, error) {
	s := &Snapshot{
		Kind:       op.Kind(),
		ID:         op.ID().String(),
		ErrorCode:  op.ErrorCode(),
		AnswerType: op.AnswerType(),
		Stats:      *op.Stats(),
	}
	if b, ok := op.(interface{ base() *Base }); ok {
		s.Parameters = b.base().Parameters()
	}
	for i, a := range op.Arguments() {
		v, err := ToArgValue(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", op.Kind(), i, err)
		}
		s.Arguments = append(s.Arguments, v)
	}
	if st, ok := op.(stateful); ok {
		if err := st.snapshotState(s); err != nil {
			return nil, fmt.Errorf("%s: %w", op.Kind(), err)
		}
	}
	return s, nil
}

// FromSnapshot rebuilds an operation through the registry. The rebuilt
// operation keeps the ID of the captured one.
func FromSnapshot(s *Snapshot) (Operation, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: operation id %q: %w", ErrInvalidArgument, s.ID, err)
	}
	args := make([]any, len(s.Arguments))
	for i, a := range s.Arguments {
		if args[i], err = a.Value(); err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", s.Kind, i, err)
		}
	}
	op, err := New(s.Kind, args, WithID(id), WithAnswerType(s.AnswerType), withParameters(s.Parameters))
	if err != nil {
		return nil, err
	}
	if b, ok := op.(interface{ base() *Base }); ok {
		b.base().code = s.ErrorCode
		b.base().stats = s.Stats
	}
	if st, ok := op.(stateful); ok {
		if err := st.restoreState(s); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Kind, err)
		}
	}
	return op, nil
}

func rankedRecords(items []rank.RankedObject) ([]RankedRecord, error) {
	out := make([]RankedRecord, 0, len(items))
	for _, it := range items {
		r, err := object.ToRecord(it.Object)
		if err != nil {
			return nil, err
		}
		out = append(out, RankedRecord{Object: r, Distance: it.Distance, SubDistances: it.SubDistances})
	}
	return out, nil
}

func rankedObjects(records []RankedRecord) ([]rank.RankedObject, error) {
	out := make([]rank.RankedObject, 0, len(records))
	for _, r := range records {
		o, err := object.FromRecord(r.Object)
		if err != nil {
			return nil, err
		}
		out = append(out, rank.NewWithSubDistances(o, r.Distance, r.SubDistances))
	}
	return out, nil
}

func objectRecords(objs []object.Object) ([]object.Record, error) {
	out := make([]object.Record, 0, len(objs))
	for _, o := range objs {
		r, err := object.ToRecord(o)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func objectsFromRecords(records []object.Record) ([]object.Object, error) {
	out := make([]object.Object, 0, len(records))
	for _, r := range records {
		o, err := object.FromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *Ranking) snapshotState(s *Snapshot) error {
	recs, err := rankedRecords(r.answer.Items())
	if err != nil {
		return err
	}
	s.Answer = recs
	return nil
}

func (r *Ranking) restoreState(s *Snapshot) error {
	items, err := rankedObjects(s.Answer)
	if err != nil {
		return err
	}
	r.answer = rank.NewCollection(r.capacity)
	for _, it := range items {
		r.answer.Insert(it)
	}
	if r.code.IsSet() {
		r.answer.Freeze()
	}
	return nil
}

func (op *IncrementalKNN) snapshotState(s *Snapshot) error {
	if err := op.Ranking.snapshotState(s); err != nil {
		return err
	}
	s.Returned = op.returned
	for id := range op.delivered {
		s.Delivered = append(s.Delivered, id.String())
	}
	return nil
}

func (op *IncrementalKNN) restoreState(s *Snapshot) error {
	if err := op.Ranking.restoreState(s); err != nil {
		return err
	}
	op.returned = s.Returned
	if len(s.Delivered) > 0 {
		op.delivered = make(map[object.ID]struct{}, len(s.Delivered))
	}
	for _, v := range s.Delivered {
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("delivered id %q: %w", v, err)
		}
		op.delivered[id] = struct{}{}
	}
	return nil
}

func (a *Approximation) record() *ApproximationRecord {
	v, special := encodeFloat(float64(a.radius))
	return &ApproximationRecord{
		DataSize:  a.dataSize,
		Radius:    v,
		Special:   special,
		RadiusSet: a.radiusSet,
		Visited:   a.visited.ToArray(),
	}
}

func (a *Approximation) restore(r *ApproximationRecord) {
	if r == nil {
		return
	}
	a.dataSize = r.DataSize
	a.radius = float32(decodeFloat(r.Radius, r.Special))
	a.radiusSet = r.RadiusSet
	a.visited = roaring.New()
	a.visited.AddMany(r.Visited)
}

func (op *ApproxKNN) snapshotState(s *Snapshot) error {
	s.Approximation = op.approx.record()
	return op.Ranking.snapshotState(s)
}

func (op *ApproxKNN) restoreState(s *Snapshot) error {
	op.approx.restore(s.Approximation)
	return op.Ranking.restoreState(s)
}

func (op *ApproxRange) snapshotState(s *Snapshot) error {
	s.Approximation = op.approx.record()
	return op.Ranking.snapshotState(s)
}

func (op *ApproxRange) restoreState(s *Snapshot) error {
	op.approx.restore(s.Approximation)
	return op.Ranking.restoreState(s)
}

func (p *partitions) record() (*PartitionsRecord, error) {
	rec := &PartitionsRecord{Current: p.current, Set: p.set}
	for _, id := range p.ids() {
		recs, err := rankedRecords(p.subs[id].Items())
		if err != nil {
			return nil, err
		}
		rec.Answers = append(rec.Answers, PartitionAnswerRecord{ID: id, Answer: recs})
	}
	return rec, nil
}

func (p *partitions) restore(rec *PartitionsRecord) error {
	if rec == nil {
		return nil
	}
	p.current, p.set = rec.Current, rec.Set
	p.subs = nil
	for _, pa := range rec.Answers {
		items, err := rankedObjects(pa.Answer)
		if err != nil {
			return err
		}
		for _, it := range items {
			p.track(pa.ID, true, it, nil)
		}
	}
	return nil
}

func (op *PartitionedKNN) snapshotState(s *Snapshot) error {
	rec, err := op.parts.record()
	if err != nil {
		return err
	}
	s.Partitions = rec
	return op.Ranking.snapshotState(s)
}

func (op *PartitionedKNN) restoreState(s *Snapshot) error {
	if err := op.parts.restore(s.Partitions); err != nil {
		return err
	}
	return op.Ranking.restoreState(s)
}

func (op *PartitionedRange) snapshotState(s *Snapshot) error {
	rec, err := op.parts.record()
	if err != nil {
		return err
	}
	s.Partitions = rec
	return op.Ranking.snapshotState(s)
}

func (op *PartitionedRange) restoreState(s *Snapshot) error {
	if err := op.parts.restore(s.Partitions); err != nil {
		return err
	}
	return op.Ranking.restoreState(s)
}

func (s *Singleton) snapshotState(snap *Snapshot) error {
	if s.answer == nil {
		return nil
	}
	recs, err := objectRecords([]object.Object{s.answer})
	if err != nil {
		return err
	}
	snap.Objects = recs
	return nil
}

func (s *Singleton) restoreState(snap *Snapshot) error {
	objs, err := objectsFromRecords(snap.Objects)
	if err != nil {
		return err
	}
	s.answer = nil
	if len(objs) > 0 {
		s.answer = objs[0]
	}
	return nil
}

func (l *Listing) snapshotState(s *Snapshot) error {
	recs, err := objectRecords(l.answer)
	if err != nil {
		return err
	}
	s.Objects = recs
	return nil
}

func (l *Listing) restoreState(s *Snapshot) error {
	objs, err := objectsFromRecords(s.Objects)
	if err != nil {
		return err
	}
	l.ResetAnswer()
	for _, o := range objs {
		l.add(o)
	}
	return nil
}

func (op *Delete) snapshotState(s *Snapshot) error {
	recs, err := objectRecords(op.deleted)
	if err != nil {
		return err
	}
	s.Objects = recs
	return nil
}

func (op *Delete) restoreState(s *Snapshot) error {
	objs, err := objectsFromRecords(s.Objects)
	if err != nil {
		return err
	}
	op.deleted = objs
	return nil
}

func (op *BulkInsert) snapshotState(s *Snapshot) error {
	s.Inserted = op.inserted
	s.Outcome = op.outcome
	return nil
}

func (op *BulkInsert) restoreState(s *Snapshot) error {
	op.inserted = s.Inserted
	op.outcome = s.Outcome
	return nil
}

// encodeFloat splits f into a finite value and a marker for the values JSON
// cannot carry.
func encodeFloat(f float64) (float64, string) {
	switch {
	case math.IsInf(f, 1):
		return 0, "+inf"
	case math.IsInf(f, -1):
		return 0, "-inf"
	case math.IsNaN(f):
		return 0, "nan"
	}
	return f, ""
}

func decodeFloat(v float64, special string) float64 {
	switch special {
	case "+inf":
		return math.Inf(1)
	case "-inf":
		return math.Inf(-1)
	case "nan":
		return math.NaN()
	}
	return v
}
