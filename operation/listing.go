package operation

import (
	"fmt"
	"slices"

	"github.com/hupe1980/simsearch/object"
)

// Listing is the shared part of queries answered by an unordered list of
// objects. Objects with an ID are listed at most once.
type Listing struct {
	Base
	limit  int
	answer []object.Object
	ids    map[object.ID]struct{}
}

// AddToAnswer materializes o and appends it. It returns false if the limit
// is reached or o is already listed.
func (l *Listing) AddToAnswer(o object.Object) bool {
	if l.limit > 0 && len(l.answer) >= l.limit {
		return false
	}
	id := o.ID()
	if id != object.NilID {
		if _, dup := l.ids[id]; dup {
			return false
		}
		if l.ids == nil {
			l.ids = make(map[object.ID]struct{})
		}
		l.ids[id] = struct{}{}
	}
	l.answer = append(l.answer, l.answerType.Apply(o))
	return true
}

// Answer returns the listed objects in insertion order.
func (l *Listing) Answer() []object.Object { return slices.Clone(l.answer) }

// AnswerCount returns the number of listed objects.
func (l *Listing) AnswerCount() int { return len(l.answer) }

// Limit returns the maximal answer size or 0.
func (l *Listing) Limit() int { return l.limit }

// ResetAnswer drops the listed objects.
func (l *Listing) ResetAnswer() {
	l.answer = nil
	l.ids = nil
}

// EndOperation finishes with ResponseReturned.
func (l *Listing) EndOperation() { _ = l.EndOperationWith(ResponseReturned) }

// WasSuccessful reports whether the response was returned.
func (l *Listing) WasSuccessful() bool { return l.code == ResponseReturned }

func (l *Listing) collect(it object.Iterator, match func(object.Object) bool) (int, error) {
	if err := l.checkPending("evaluate"); err != nil {
		return 0, err
	}
	added := 0
	for (l.limit <= 0 || len(l.answer) < l.limit) && it.Next() {
		o := it.Current()
		l.stats.ObjectsAccessed++
		if match(o) && l.AddToAnswer(o) {
			added++
		}
	}
	if err := it.Err(); err != nil {
		return added, fmt.Errorf("%s: evaluate: %w", l.kind, err)
	}
	return added, nil
}

func (l *Listing) cloneListing(withAnswer bool) Listing {
	c := Listing{Base: l.Base.clone(withAnswer), limit: l.limit}
	if withAnswer {
		for _, o := range l.answer {
			c.add(o)
		}
	}
	return c
}

// UpdateFrom re-adds every object of other.
func (l *Listing) UpdateFrom(other Operation) error {
	o, ok := other.(interface{ listing() *Listing })
	if !ok || other.Kind() != l.kind {
		return incompatible(l.kind, other)
	}
	src := o.listing()
	if src == l {
		return nil
	}
	for _, obj := range src.answer {
		l.add(obj)
	}
	l.Base.merge(src)
	return nil
}

// add appends an already materialized object.
func (l *Listing) add(o object.Object) {
	t := l.answerType
	l.answerType = Original
	l.AddToAnswer(o)
	l.answerType = t
}

func (l *Listing) listing() *Listing { return l }

// GetAllObjects lists every object, up to an optional limit.
type GetAllObjects struct {
	Listing
}

// NewGetAllObjects creates a listing of all objects. limit <= 0 means
// unlimited.
func NewGetAllObjects(limit int, optFns ...Option) (*GetAllObjects, error) {
	limit = max(limit, 0)
	return &GetAllObjects{Listing: Listing{
		Base:  newBase(KindGetAllObjects, applyOptions(optFns), limit),
		limit: limit,
	}}, nil
}

// Evaluate lists the objects of it.
func (op *GetAllObjects) Evaluate(it object.Iterator) (int, error) {
	return op.collect(it, func(object.Object) bool { return true })
}

// Clone copies the query, optionally with its answer.
func (op *GetAllObjects) Clone(withAnswer bool) Operation {
	return &GetAllObjects{Listing: op.cloneListing(withAnswer)}
}

// GetObjectsByLocators lists the objects whose locator is one of a set.
type GetObjectsByLocators struct {
	Listing
	locators map[string]struct{}
}

// NewGetObjectsByLocators creates a lookup by a set of locators.
func NewGetObjectsByLocators(locators []string, optFns ...Option) (*GetObjectsByLocators, error) {
	if len(locators) == 0 {
		return nil, fmt.Errorf("%w: %s: no locators", ErrInvalidArgument, KindGetObjectsByLocators)
	}
	locators = slices.Clone(locators)
	set := make(map[string]struct{}, len(locators))
	for _, l := range locators {
		set[l] = struct{}{}
	}
	return &GetObjectsByLocators{
		Listing:  Listing{Base: newBase(KindGetObjectsByLocators, applyOptions(optFns), locators)},
		locators: set,
	}, nil
}

// Evaluate lists the objects of it with a requested locator.
func (op *GetObjectsByLocators) Evaluate(it object.Iterator) (int, error) {
	return op.collect(it, func(o object.Object) bool {
		_, ok := op.locators[o.Locator()]
		return ok
	})
}

// Clone copies the query, optionally with its answer.
func (op *GetObjectsByLocators) Clone(withAnswer bool) Operation {
	return &GetObjectsByLocators{Listing: op.cloneListing(withAnswer), locators: op.locators}
}
