package operation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/simsearch/index"
	"github.com/hupe1980/simsearch/object"
)

// Delete removes the objects equal to a target object.
type Delete struct {
	Base
	target  object.Object
	limit   int
	deleted []object.Object
}

// NewDelete creates a delete of objects data-equal to target. limit <= 0
// removes every match.
func NewDelete(target object.Object, limit int, optFns ...Option) (*Delete, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: %s: nil object", ErrInvalidArgument, KindDelete)
	}
	limit = max(limit, 0)
	return &Delete{
		Base:   newBase(KindDelete, applyOptions(optFns), target, limit),
		target: target,
		limit:  limit,
	}, nil
}

// Target returns the object to delete.
func (op *Delete) Target() object.Object { return op.target }

// Deleted returns the removed objects.
func (op *Delete) Deleted() []object.Object { return slices.Clone(op.deleted) }

// AnswerCount returns the number of removed objects.
func (op *Delete) AnswerCount() int { return len(op.deleted) }

// ResetAnswer forgets the removed objects.
func (op *Delete) ResetAnswer() { op.deleted = nil }

// Evaluate removes matching objects through it, which must implement
// Remover.
func (op *Delete) Evaluate(it object.Iterator) (int, error) {
	if err := op.checkPending("evaluate"); err != nil {
		return 0, err
	}
	r, ok := it.(Remover)
	if !ok {
		return 0, invalidState(op.kind, "evaluate", ErrNotRemovable)
	}
	n := 0
	for (op.limit == 0 || len(op.deleted) < op.limit) && it.Next() {
		o := it.Current()
		op.stats.ObjectsAccessed++
		if !matches(op.target, o) {
			continue
		}
		if err := r.Remove(); err != nil {
			return n, fmt.Errorf("%s: remove: %w", op.kind, err)
		}
		op.deleted = append(op.deleted, op.answerType.Apply(o))
		n++
	}
	if err := it.Err(); err != nil {
		return n, fmt.Errorf("%s: evaluate: %w", op.kind, err)
	}
	return n, nil
}

func matches(target, o object.Object) bool {
	if id := target.ID(); id != object.NilID && id == o.ID() {
		return true
	}
	return object.DataEqual(target, o)
}

// EndOperation finishes with ObjectDeleted if anything was removed and
// ObjectNotFound otherwise.
func (op *Delete) EndOperation() {
	code := ObjectNotFound
	if len(op.deleted) > 0 {
		code = ObjectDeleted
	}
	_ = op.EndOperationWith(code)
}

// WasSuccessful reports whether objects were deleted.
func (op *Delete) WasSuccessful() bool { return op.code == ObjectDeleted }

// Clone copies the operation, optionally with the removed objects.
func (op *Delete) Clone(withAnswer bool) Operation {
	c := *op
	c.Base = op.Base.clone(withAnswer)
	if withAnswer {
		c.deleted = slices.Clone(op.deleted)
	} else {
		c.deleted = nil
	}
	return &c
}

// UpdateFrom adds the removed objects of other.
func (op *Delete) UpdateFrom(other Operation) error {
	o, ok := other.(*Delete)
	if !ok {
		return incompatible(op.kind, other)
	}
	if o == op {
		return nil
	}
	op.deleted = append(op.deleted, o.deleted...)
	op.Base.merge(o)
	return nil
}

// BulkInsert stores a batch of objects.
type BulkInsert struct {
	Base
	objects  []object.Object
	inserted int
	// outcome is the first code other than ObjectInserted seen while
	// inserting.
	outcome ErrorCode
}

// NewBulkInsert creates an insert of objects.
func NewBulkInsert(objects []object.Object, optFns ...Option) (*BulkInsert, error) {
	if slices.Contains(objects, nil) {
		return nil, fmt.Errorf("%w: %s: nil object", ErrInvalidArgument, KindBulkInsert)
	}
	objects = slices.Clone(objects)
	return &BulkInsert{
		Base:    newBase(KindBulkInsert, applyOptions(optFns), objects),
		objects: objects,
	}, nil
}

// Objects returns the objects to insert.
func (op *BulkInsert) Objects() []object.Object { return slices.Clone(op.objects) }

// Inserted returns the number of stored objects.
func (op *BulkInsert) Inserted() int { return op.inserted }

// Insert adds the objects to dst. Duplicates are skipped, a hard capacity
// violation stops the batch.
func (op *BulkInsert) Insert(dst Inserter) (int, error) {
	if err := op.checkPending("insert"); err != nil {
		return 0, err
	}
	n := 0
	for _, o := range op.objects {
		err := dst.Add(o)
		switch {
		case err == nil:
			n++
		case errors.Is(err, index.ErrSoftCapacity):
			n++
			op.observe(SoftCapacityExceeded)
		case errors.Is(err, index.ErrDuplicate):
			op.observe(ObjectDuplicate)
		case errors.Is(err, index.ErrHardCapacity):
			op.observe(HardCapacityExceeded)
			op.inserted += n
			return n, nil
		default:
			op.observe(StorageFailure)
			op.inserted += n
			return n, fmt.Errorf("%s: %w", op.kind, err)
		}
	}
	op.inserted += n
	return n, nil
}

func (op *BulkInsert) observe(code ErrorCode) {
	op.outcome = mergeCode(op.outcome, code)
}

// EndOperation finishes with the first insertion problem or ObjectInserted.
func (op *BulkInsert) EndOperation() {
	code := op.outcome
	if code == NotSet {
		code = ObjectInserted
	}
	_ = op.EndOperationWith(code)
}

// WasSuccessful reports whether every object was stored.
func (op *BulkInsert) WasSuccessful() bool {
	return op.code == ObjectInserted || op.code == SoftCapacityExceeded
}

// Clone copies the operation, optionally with its insertion results.
func (op *BulkInsert) Clone(withAnswer bool) Operation {
	c := *op
	c.Base = op.Base.clone(withAnswer)
	if !withAnswer {
		c.inserted = 0
		c.outcome = NotSet
	}
	return &c
}

// UpdateFrom sums the insertion results of other.
func (op *BulkInsert) UpdateFrom(other Operation) error {
	o, ok := other.(*BulkInsert)
	if !ok {
		return incompatible(op.kind, other)
	}
	if o == op {
		return nil
	}
	op.inserted += o.inserted
	op.outcome = mergeCode(op.outcome, o.outcome)
	op.Base.merge(o)
	return nil
}
