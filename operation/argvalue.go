package operation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hupe1980/simsearch/object"
)

// Argument value types.
const (
	ArgNil           = "nil"
	ArgObject        = "object"
	ArgObjects       = "objects"
	ArgInt           = "int"
	ArgFloat32       = "float32"
	ArgFloat64       = "float64"
	ArgString        = "string"
	ArgStrings       = "strings"
	ArgID            = "id"
	ArgStopCondition = "stop-condition"
	ArgAggregation   = "aggregation"
)

// ArgValue is the codec-neutral form of a constructor argument.
type ArgValue struct {
	Type    string          `json:"type" msgpack:"type"`
	Int     int64           `json:"int,omitempty" msgpack:"int,omitempty"`
	Float   float64         `json:"float,omitempty" msgpack:"float,omitempty"`
	Special string          `json:"special,omitempty" msgpack:"special,omitempty"`
	String  string          `json:"string,omitempty" msgpack:"string,omitempty"`
	Strings []string        `json:"strings,omitempty" msgpack:"strings,omitempty"`
	Floats  []float32       `json:"floats,omitempty" msgpack:"floats,omitempty"`
	Objects []object.Record `json:"objects,omitempty" msgpack:"objects,omitempty"`
}

// ToArgValue converts an argument of a built-in operation kind.
func ToArgValue(v any) (ArgValue, error) {
	switch x := v.(type) {
	case nil:
		return ArgValue{Type: ArgNil}, nil
	case object.Object:
		r, err := object.ToRecord(x)
		if err != nil {
			return ArgValue{}, err
		}
		return ArgValue{Type: ArgObject, Objects: []object.Record{r}}, nil
	case []object.Object:
		recs, err := objectRecords(x)
		if err != nil {
			return ArgValue{}, err
		}
		return ArgValue{Type: ArgObjects, Objects: recs}, nil
	case int:
		return ArgValue{Type: ArgInt, Int: int64(x)}, nil
	case float32:
		f, special := encodeFloat(float64(x))
		return ArgValue{Type: ArgFloat32, Float: f, Special: special}, nil
	case float64:
		f, special := encodeFloat(x)
		return ArgValue{Type: ArgFloat64, Float: f, Special: special}, nil
	case string:
		return ArgValue{Type: ArgString, String: x}, nil
	case []string:
		return ArgValue{Type: ArgStrings, Strings: x}, nil
	case object.ID:
		return ArgValue{Type: ArgID, String: x.String()}, nil
	case StopCondition:
		return ArgValue{Type: ArgStopCondition, Int: int64(x)}, nil
	case object.Aggregation:
		return ArgValue{Type: ArgAggregation, String: x.Name(), Floats: object.AggregationWeights(x)}, nil
	}
	return ArgValue{}, fmt.Errorf("%w: unsupported argument type %T", ErrInvalidArgument, v)
}

// Value converts a back to the argument it was created from.
func (a ArgValue) Value() (any, error) {
	switch a.Type {
	case ArgNil:
		return nil, nil
	case ArgObject:
		if len(a.Objects) != 1 {
			return nil, fmt.Errorf("%w: object argument with %d records", ErrInvalidArgument, len(a.Objects))
		}
		return object.FromRecord(a.Objects[0])
	case ArgObjects:
		return objectsFromRecords(a.Objects)
	case ArgInt:
		return int(a.Int), nil
	case ArgFloat32:
		return float32(decodeFloat(a.Float, a.Special)), nil
	case ArgFloat64:
		return decodeFloat(a.Float, a.Special), nil
	case ArgString:
		return a.String, nil
	case ArgStrings:
		return a.Strings, nil
	case ArgID:
		return uuid.Parse(a.String)
	case ArgStopCondition:
		return StopCondition(a.Int), nil
	case ArgAggregation:
		return object.AggregationByName(a.String, a.Floats)
	}
	return nil, fmt.Errorf("%w: unknown argument type %q", ErrInvalidArgument, a.Type)
}
