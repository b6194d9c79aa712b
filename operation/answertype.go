package operation

import (
	"fmt"

	"github.com/hupe1980/simsearch/object"
)

// AnswerType controls how objects are materialized in an answer.
type AnswerType int

const (
	// Original stores the object reference as returned by the iterator.
	Original AnswerType = iota
	// Cloned stores a deep copy.
	Cloned
	// ClearedSurplus stores a copy without surplus data such as pivot
	// distances.
	ClearedSurplus
	// NoData stores only ID and locator.
	NoData
)

func (t AnswerType) String() string {
	switch t {
	case Original:
		return "original"
	case Cloned:
		return "cloned"
	case ClearedSurplus:
		return "cleared-surplus"
	case NoData:
		return "no-data"
	default:
		return fmt.Sprintf("answer-type(%d)", int(t))
	}
}

// ParseAnswerType parses the String form of an answer type.
func ParseAnswerType(s string) (AnswerType, error) {
	for t := Original; t <= NoData; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return Original, fmt.Errorf("%w: answer type %q", ErrInvalidArgument, s)
}

// Apply materializes o according to t.
func (t AnswerType) Apply(o object.Object) object.Object {
	switch t {
	case Cloned:
		return object.Clone(o)
	case ClearedSurplus:
		cl, ok := o.(object.Cloner)
		if !ok {
			return o
		}
		c := cl.Clone()
		if sc, ok := c.(object.SurplusClearer); ok {
			sc.ClearSurplusData()
		}
		return c
	case NoData:
		return object.NewNoData(o)
	default:
		return o
	}
}
