package operation

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatible is returned when merging operations of different kinds.
	ErrIncompatible = errors.New("incompatible operation")
	// ErrNotFinished is returned when a finished operation is required.
	ErrNotFinished = errors.New("operation not finished")
	// ErrFinished is returned when a finished operation is evaluated again.
	ErrFinished = errors.New("operation already finished")
	// ErrInvalidCode is returned when ending an operation with NotSet.
	ErrInvalidCode = errors.New("invalid error code")
	// ErrInvalidArgument is returned for bad constructor arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownKind is returned by the registry for unregistered kinds.
	ErrUnknownKind = errors.New("unknown operation kind")
	// ErrNotRemovable is returned when a delete runs over an iterator that
	// cannot remove objects.
	ErrNotRemovable = errors.New("iterator does not support removal")
)

// InvalidStateError reports structural misuse of an operation.
//
// The cause can be inspected with errors.Is / errors.As.
type InvalidStateError struct {
	Kind string
	Op   string
	Err  error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *InvalidStateError) Unwrap() error { return e.Err }

func invalidState(kind, op string, err error) error {
	return &InvalidStateError{Kind: kind, Op: op, Err: err}
}

func incompatible(kind string, other Operation) error {
	return invalidState(kind, "update", fmt.Errorf("%w: cannot merge %s", ErrIncompatible, other.Kind()))
}
