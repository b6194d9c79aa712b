package operation

import (
	"fmt"

	"github.com/hupe1980/simsearch/object"
)

// Singleton is the shared part of queries answered by at most one object.
type Singleton struct {
	Base
	answer object.Object
}

// Answer returns the found object or nil.
func (s *Singleton) Answer() object.Object { return s.answer }

// AnswerCount returns 1 if an object was found.
func (s *Singleton) AnswerCount() int {
	if s.answer == nil {
		return 0
	}
	return 1
}

// ResetAnswer drops the found object.
func (s *Singleton) ResetAnswer() { s.answer = nil }

// EndOperation finishes with ResponseReturned if an object was found and
// ObjectNotFound otherwise.
func (s *Singleton) EndOperation() {
	code := ObjectNotFound
	if s.answer != nil {
		code = ResponseReturned
	}
	_ = s.EndOperationWith(code)
}

// WasSuccessful reports whether the object was returned.
func (s *Singleton) WasSuccessful() bool { return s.code == ResponseReturned }

func (s *Singleton) find(it object.Iterator, match func(object.Object) bool) (int, error) {
	if err := s.checkPending("evaluate"); err != nil {
		return 0, err
	}
	if s.answer != nil {
		return 0, nil
	}
	for it.Next() {
		o := it.Current()
		s.stats.ObjectsAccessed++
		if match(o) {
			s.answer = s.answerType.Apply(o)
			return 1, nil
		}
	}
	if err := it.Err(); err != nil {
		return 0, fmt.Errorf("%s: evaluate: %w", s.kind, err)
	}
	return 0, nil
}

func (s *Singleton) cloneSingleton(withAnswer bool) Singleton {
	c := Singleton{Base: s.Base.clone(withAnswer)}
	if withAnswer {
		c.answer = s.answer
	}
	return c
}

// UpdateFrom takes the object of other if none has been found yet.
func (s *Singleton) UpdateFrom(other Operation) error {
	o, ok := other.(interface{ singleton() *Singleton })
	if !ok || other.Kind() != s.kind {
		return incompatible(s.kind, other)
	}
	src := o.singleton()
	if src == s {
		return nil
	}
	if s.answer == nil {
		s.answer = src.answer
	}
	s.Base.merge(src)
	return nil
}

func (s *Singleton) singleton() *Singleton { return s }

// GetObject retrieves the object with a given ID.
type GetObject struct {
	Singleton
	id object.ID
}

// NewGetObject creates a lookup by object ID.
func NewGetObject(id object.ID, optFns ...Option) (*GetObject, error) {
	if id == object.NilID {
		return nil, fmt.Errorf("%w: %s: nil object id", ErrInvalidArgument, KindGetObject)
	}
	return &GetObject{
		Singleton: Singleton{Base: newBase(KindGetObject, applyOptions(optFns), id)},
		id:        id,
	}, nil
}

// ObjectID returns the requested ID.
func (op *GetObject) ObjectID() object.ID { return op.id }

// Evaluate searches it for the requested object.
func (op *GetObject) Evaluate(it object.Iterator) (int, error) {
	return op.find(it, func(o object.Object) bool { return o.ID() == op.id })
}

// Clone copies the query, optionally with its answer.
func (op *GetObject) Clone(withAnswer bool) Operation {
	return &GetObject{Singleton: op.cloneSingleton(withAnswer), id: op.id}
}

// GetObjectByLocator retrieves the first object with a given locator.
type GetObjectByLocator struct {
	Singleton
	locator string
}

// NewGetObjectByLocator creates a lookup by locator.
func NewGetObjectByLocator(locator string, optFns ...Option) (*GetObjectByLocator, error) {
	if locator == "" {
		return nil, fmt.Errorf("%w: %s: empty locator", ErrInvalidArgument, KindGetObjectByLocator)
	}
	return &GetObjectByLocator{
		Singleton: Singleton{Base: newBase(KindGetObjectByLocator, applyOptions(optFns), locator)},
		locator:   locator,
	}, nil
}

// Locator returns the requested locator.
func (op *GetObjectByLocator) Locator() string { return op.locator }

// Evaluate searches it for the requested locator.
func (op *GetObjectByLocator) Evaluate(it object.Iterator) (int, error) {
	return op.find(it, func(o object.Object) bool { return o.Locator() == op.locator })
}

// Clone copies the query, optionally with its answer.
func (op *GetObjectByLocator) Clone(withAnswer bool) Operation {
	return &GetObjectByLocator{Singleton: op.cloneSingleton(withAnswer), locator: op.locator}
}
