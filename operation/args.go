package operation

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/simsearch/object"
)

func argsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !argEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func argEqual(a, b any) bool {
	switch x := a.(type) {
	case object.Object:
		y, ok := b.(object.Object)
		return ok && object.DataEqual(x, y)
	case []object.Object:
		y, ok := b.([]object.Object)
		return ok && slices.EqualFunc(x, y, object.DataEqual)
	case []string:
		y, ok := b.([]string)
		return ok && slices.Equal(x, y)
	case object.Aggregation:
		y, ok := b.(object.Aggregation)
		return ok && x.Name() == y.Name() &&
			slices.Equal(object.AggregationWeights(x), object.AggregationWeights(y))
	case nil:
		return b == nil
	}
	return a == b
}

func hashArgs(kind string, t AnswerType, args []any) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	writeUint64(h, uint64(t))
	for _, a := range args {
		hashArg(h, a)
	}
	return h.Sum64()
}

func hashArg(h *xxhash.Digest, a any) {
	switch x := a.(type) {
	case object.Object:
		hashObject(h, x)
	case []object.Object:
		writeUint64(h, uint64(len(x)))
		for _, o := range x {
			hashObject(h, o)
		}
	case []string:
		writeUint64(h, uint64(len(x)))
		for _, s := range x {
			_, _ = h.WriteString(s)
			_, _ = h.Write([]byte{0})
		}
	case object.Aggregation:
		_, _ = h.WriteString(x.Name())
		for _, w := range object.AggregationWeights(x) {
			writeUint64(h, uint64(math.Float32bits(w)))
		}
	case float32:
		writeUint64(h, uint64(math.Float32bits(x)))
	case float64:
		writeUint64(h, math.Float64bits(x))
	case int:
		writeUint64(h, uint64(x))
	case string:
		_, _ = h.WriteString(x)
	case object.ID:
		_, _ = h.Write(x[:])
	default:
		_, _ = fmt.Fprintf(h, "%T:%v", a, a)
	}
	_, _ = h.Write([]byte{0xff})
}

func hashObject(h *xxhash.Digest, o object.Object) {
	if o == nil {
		return
	}
	if de, ok := o.(object.DataEqualer); ok {
		writeUint64(h, de.DataHash())
		return
	}
	id := o.ID()
	_, _ = h.Write(id[:])
}

func writeUint64(h *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// argAs returns args[i] converted to T.
func argAs[T any](kind string, args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, fmt.Errorf("%w: %s: missing argument %d", ErrInvalidArgument, kind, i)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: argument %d is %T, want %T", ErrInvalidArgument, kind, i, args[i], zero)
	}
	return v, nil
}

// optionalArg returns args[i] converted to T or def if absent.
func optionalArg[T any](kind string, args []any, i int, def T) (T, error) {
	if i >= len(args) {
		return def, nil
	}
	return argAs[T](kind, args, i)
}

func checkArgCount(kind string, args []any, minArgs, maxArgs int) error {
	if len(args) < minArgs || len(args) > maxArgs {
		return fmt.Errorf("%w: %s takes %d to %d arguments, got %d", ErrInvalidArgument, kind, minArgs, maxArgs, len(args))
	}
	return nil
}
