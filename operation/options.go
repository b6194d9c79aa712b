package operation

import "github.com/google/uuid"

// EndFunc is called with the terminal code when an operation is ended.
type EndFunc func(code ErrorCode)

// Option configures an operation.
type Option func(*options)

type options struct {
	id           uuid.UUID
	answerType   AnswerType
	params       map[string]any
	supplemental any
	onEnd        []EndFunc
}

// WithID sets the operation ID instead of generating one. Used to rebuild an
// operation received from another process.
func WithID(id uuid.UUID) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithAnswerType sets how answer objects are materialized (default Original).
func WithAnswerType(t AnswerType) Option {
	return func(o *options) {
		o.answerType = t
	}
}

// WithParameter sets an additional named parameter.
func WithParameter(name string, value any) Option {
	return func(o *options) {
		if o.params == nil {
			o.params = make(map[string]any)
		}
		o.params[name] = value
	}
}

// WithSupplementalData attaches opaque caller data.
func WithSupplementalData(v any) Option {
	return func(o *options) {
		o.supplemental = v
	}
}

// WithOnEnd registers a callback invoked every time the operation is ended.
func WithOnEnd(fn EndFunc) Option {
	return func(o *options) {
		o.onEnd = append(o.onEnd, fn)
	}
}

func withParameters(params map[string]any) Option {
	return func(o *options) {
		for k, v := range params {
			WithParameter(k, v)(o)
		}
	}
}

func applyOptions(optFns []Option) options {
	var o options
	for _, fn := range optFns {
		fn(&o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	return o
}
