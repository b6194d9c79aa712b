package operation

import (
	"fmt"
	"maps"

	"github.com/google/uuid"
)

// Base holds the state shared by every operation kind. It is embedded by the
// concrete kinds.
type Base struct {
	kind         string
	id           uuid.UUID
	code         ErrorCode
	answerType   AnswerType
	args         []any
	params       map[string]any
	supplemental any
	onEnd        []EndFunc
	stats        Stats
}

func newBase(kind string, o options, args ...any) Base {
	return Base{
		kind:         kind,
		id:           o.id,
		answerType:   o.answerType,
		args:         args,
		params:       o.params,
		supplemental: o.supplemental,
		onEnd:        o.onEnd,
	}
}

func (b *Base) ID() uuid.UUID          { return b.id }
func (b *Base) Kind() string           { return b.kind }
func (b *Base) ErrorCode() ErrorCode   { return b.code }
func (b *Base) IsFinished() bool       { return b.code.IsSet() }
func (b *Base) AnswerType() AnswerType { return b.answerType }
func (b *Base) Stats() *Stats          { return &b.stats }
func (b *Base) SupplementalData() any  { return b.supplemental }

// SetSupplementalData replaces the opaque caller data.
func (b *Base) SetSupplementalData(v any) { b.supplemental = v }

// Parameter returns an additional named parameter.
func (b *Base) Parameter(name string) (any, bool) {
	v, ok := b.params[name]
	return v, ok
}

// SetParameter sets an additional named parameter.
func (b *Base) SetParameter(name string, value any) {
	if b.params == nil {
		b.params = make(map[string]any)
	}
	b.params[name] = value
}

// Parameters returns a copy of the additional parameters.
func (b *Base) Parameters() map[string]any { return maps.Clone(b.params) }

// OnEnd registers fn to be called whenever the operation is ended.
func (b *Base) OnEnd(fn EndFunc) {
	if fn != nil {
		b.onEnd = append(b.onEnd, fn)
	}
}

// EndOperationWith sets the terminal code.
func (b *Base) EndOperationWith(code ErrorCode) error {
	if code == NotSet {
		return invalidState(b.kind, "end", fmt.Errorf("%w: %s", ErrInvalidCode, code))
	}
	b.code = code
	for _, fn := range b.onEnd {
		fn(code)
	}
	return nil
}

func (b *Base) Arguments() []any   { return append([]any(nil), b.args...) }
func (b *Base) ArgumentCount() int { return len(b.args) }

// Argument returns the i-th constructor argument.
func (b *Base) Argument(i int) (any, error) {
	if i < 0 || i >= len(b.args) {
		return nil, fmt.Errorf("%w: %s has %d arguments, index %d", ErrInvalidArgument, b.kind, len(b.args), i)
	}
	return b.args[i], nil
}

// DataEqual reports whether other is of the same kind with equal arguments
// and answer type.
func (b *Base) DataEqual(other Operation) bool {
	if other == nil || other.Kind() != b.kind || other.AnswerType() != b.answerType {
		return false
	}
	return argsEqual(b.args, other.Arguments())
}

// DataHash hashes kind, answer type and arguments. Equal content yields equal
// hashes.
func (b *Base) DataHash() uint64 {
	return hashArgs(b.kind, b.answerType, b.args)
}

// clone copies the shared state. Callbacks stay with the original.
func (b *Base) clone(withAnswer bool) Base {
	c := *b
	c.params = maps.Clone(b.params)
	c.onEnd = nil
	if !withAnswer {
		c.stats = Stats{}
	}
	return c
}

type mergeable interface {
	ErrorCode() ErrorCode
	Stats() *Stats
}

// merge folds the error code and counters of other into b.
func (b *Base) merge(other mergeable) {
	b.code = mergeCode(b.code, other.ErrorCode())
	b.stats.Add(*other.Stats())
}

func (b *Base) base() *Base { return b }

func (b *Base) checkPending(op string) error {
	if b.code.IsSet() {
		return invalidState(b.kind, op, ErrFinished)
	}
	return nil
}
