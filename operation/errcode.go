package operation

// ErrorCode is the terminal state of an operation.
type ErrorCode int

const (
	// NotSet marks a pending operation.
	NotSet ErrorCode = iota
	// ResponseReturned is the success code of plain queries.
	ResponseReturned
	// HasNext is the success code of an incremental query with more results.
	HasNext
	ObjectInserted
	ObjectDeleted
	ObjectDuplicate
	ObjectNotFound
	// SoftCapacityExceeded means the object was stored beyond the soft limit.
	SoftCapacityExceeded
	HardCapacityExceeded
	InvalidState
	StorageFailure
	UnknownError
)

var errorCodeNames = [...]string{
	NotSet:               "not-set",
	ResponseReturned:     "response-returned",
	HasNext:              "has-next",
	ObjectInserted:       "object-inserted",
	ObjectDeleted:        "object-deleted",
	ObjectDuplicate:      "object-duplicate",
	ObjectNotFound:       "object-not-found",
	SoftCapacityExceeded: "soft-capacity-exceeded",
	HardCapacityExceeded: "hard-capacity-exceeded",
	InvalidState:         "invalid-state",
	StorageFailure:       "storage-failure",
	UnknownError:         "unknown-error",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(errorCodeNames) {
		return "unknown-error"
	}
	return errorCodeNames[c]
}

// IsSet reports whether the operation has been finished.
func (c ErrorCode) IsSet() bool { return c != NotSet }

// IsFailure reports whether c is a definitive failure. Failures are never
// masked when partial operations are merged.
func (c ErrorCode) IsFailure() bool {
	switch c {
	case HardCapacityExceeded, InvalidState, StorageFailure, UnknownError:
		return true
	}
	return c < NotSet || c > UnknownError
}

// IsSuccess reports whether c is one of the generic success codes.
func (c ErrorCode) IsSuccess() bool {
	switch c {
	case ResponseReturned, HasNext, ObjectInserted, ObjectDeleted, SoftCapacityExceeded:
		return true
	}
	return false
}

// mergeCode combines the code of a partial operation into the current one.
// Pending and "nothing found yet" codes are overwritten, the first failure
// always wins.
func mergeCode(current, partial ErrorCode) ErrorCode {
	switch {
	case current.IsFailure():
		return current
	case partial.IsFailure():
		return partial
	case partial == NotSet:
		return current
	case current == NotSet, current == ObjectNotFound:
		return partial
	}
	return current
}
