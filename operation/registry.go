package operation

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/simsearch/object"
)

// Built-in operation kinds.
const (
	KindGetObject            = "get-object"
	KindGetObjectByLocator   = "get-object-by-locator"
	KindGetAllObjects        = "get-all-objects"
	KindGetObjectsByLocators = "get-objects-by-locators"
	KindKNN                  = "knn"
	KindRange                = "range"
	KindIncrementalKNN       = "incremental-knn"
	KindApproxKNN            = "approx-knn"
	KindApproxRange          = "approx-range"
	KindPartitionedKNN       = "partitioned-knn"
	KindPartitionedRange     = "partitioned-range"
	KindAggregationKNN       = "aggregation-knn"
	KindDelete               = "delete"
	KindBulkInsert           = "bulk-insert"
)

// Factory builds an operation from its positional arguments, as returned by
// Operation.Arguments.
type Factory func(args []any, optFns ...Option) (Operation, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		KindGetObject:            newGetObjectFromArgs,
		KindGetObjectByLocator:   newGetObjectByLocatorFromArgs,
		KindGetAllObjects:        newGetAllObjectsFromArgs,
		KindGetObjectsByLocators: newGetObjectsByLocatorsFromArgs,
		KindKNN:                  newKNNFromArgs,
		KindRange:                newRangeFromArgs,
		KindIncrementalKNN:       newIncrementalKNNFromArgs,
		KindApproxKNN:            newApproxKNNFromArgs,
		KindApproxRange:          newApproxRangeFromArgs,
		KindPartitionedKNN:       newPartitionedKNNFromArgs,
		KindPartitionedRange:     newPartitionedRangeFromArgs,
		KindAggregationKNN:       newAggregationKNNFromArgs,
		KindDelete:               newDeleteFromArgs,
		KindBulkInsert:           newBulkInsertFromArgs,
	}
)

// Register registers the factory of a custom operation kind, replacing any
// previous registration.
//
// Operation packages should typically call this from an init() function.
func Register(kind string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = f
}

// New builds an operation of the given kind from positional arguments.
func New(kind string, args []any, optFns ...Option) (Operation, error) {
	registryMu.RLock()
	f, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return f(args, optFns...)
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func built[T Operation](op T, err error) (Operation, error) {
	if err != nil {
		return nil, err
	}
	return op, nil
}

func newGetObjectFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindGetObject, args, 1, 1); err != nil {
		return nil, err
	}
	id, err := argAs[object.ID](KindGetObject, args, 0)
	if err != nil {
		return nil, err
	}
	return built(NewGetObject(id, optFns...))
}

func newGetObjectByLocatorFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindGetObjectByLocator, args, 1, 1); err != nil {
		return nil, err
	}
	locator, err := argAs[string](KindGetObjectByLocator, args, 0)
	if err != nil {
		return nil, err
	}
	return built(NewGetObjectByLocator(locator, optFns...))
}

func newGetAllObjectsFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindGetAllObjects, args, 0, 1); err != nil {
		return nil, err
	}
	limit, err := optionalArg(KindGetAllObjects, args, 0, 0)
	if err != nil {
		return nil, err
	}
	return built(NewGetAllObjects(limit, optFns...))
}

func newGetObjectsByLocatorsFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindGetObjectsByLocators, args, 1, 1); err != nil {
		return nil, err
	}
	locators, err := argAs[[]string](KindGetObjectsByLocators, args, 0)
	if err != nil {
		return nil, err
	}
	return built(NewGetObjectsByLocators(locators, optFns...))
}

func queryAndInt(kind string, args []any, minArgs, maxArgs int) (object.Object, int, error) {
	if err := checkArgCount(kind, args, minArgs, maxArgs); err != nil {
		return nil, 0, err
	}
	q, err := argAs[object.Object](kind, args, 0)
	if err != nil {
		return nil, 0, err
	}
	n, err := argAs[int](kind, args, 1)
	if err != nil {
		return nil, 0, err
	}
	return q, n, nil
}

func rangeArgs(kind string, args []any, minArgs, maxArgs int) (object.Object, float32, int, error) {
	if err := checkArgCount(kind, args, minArgs, maxArgs); err != nil {
		return nil, 0, 0, err
	}
	q, err := argAs[object.Object](kind, args, 0)
	if err != nil {
		return nil, 0, 0, err
	}
	r, err := argAs[float32](kind, args, 1)
	if err != nil {
		return nil, 0, 0, err
	}
	maxSize, err := optionalArg(kind, args, 2, 0)
	if err != nil {
		return nil, 0, 0, err
	}
	return q, r, maxSize, nil
}

func stopArgs(kind string, args []any, i int) (StopCondition, float64, error) {
	cond, err := argAs[StopCondition](kind, args, i)
	if err != nil {
		return 0, 0, err
	}
	value, err := argAs[float64](kind, args, i+1)
	if err != nil {
		return 0, 0, err
	}
	return cond, value, nil
}

func newKNNFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, k, err := queryAndInt(KindKNN, args, 2, 2)
	if err != nil {
		return nil, err
	}
	return built(NewKNN(q, k, optFns...))
}

func newRangeFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, r, maxSize, err := rangeArgs(KindRange, args, 2, 3)
	if err != nil {
		return nil, err
	}
	return built(NewRange(q, r, maxSize, optFns...))
}

func newIncrementalKNNFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, minNN, err := queryAndInt(KindIncrementalKNN, args, 2, 2)
	if err != nil {
		return nil, err
	}
	return built(NewIncrementalKNN(q, minNN, optFns...))
}

func newApproxKNNFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, k, err := queryAndInt(KindApproxKNN, args, 4, 4)
	if err != nil {
		return nil, err
	}
	cond, value, err := stopArgs(KindApproxKNN, args, 2)
	if err != nil {
		return nil, err
	}
	return built(NewApproxKNN(q, k, cond, value, optFns...))
}

func newApproxRangeFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, r, maxSize, err := rangeArgs(KindApproxRange, args, 5, 5)
	if err != nil {
		return nil, err
	}
	cond, value, err := stopArgs(KindApproxRange, args, 3)
	if err != nil {
		return nil, err
	}
	return built(NewApproxRange(q, r, maxSize, cond, value, optFns...))
}

func newPartitionedKNNFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, k, err := queryAndInt(KindPartitionedKNN, args, 2, 2)
	if err != nil {
		return nil, err
	}
	return built(NewPartitionedKNN(q, k, optFns...))
}

func newPartitionedRangeFromArgs(args []any, optFns ...Option) (Operation, error) {
	q, r, maxSize, err := rangeArgs(KindPartitionedRange, args, 2, 3)
	if err != nil {
		return nil, err
	}
	return built(NewPartitionedRange(q, r, maxSize, optFns...))
}

func newAggregationKNNFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindAggregationKNN, args, 3, 3); err != nil {
		return nil, err
	}
	queries, err := argAs[[]object.Object](KindAggregationKNN, args, 0)
	if err != nil {
		return nil, err
	}
	agg, err := argAs[object.Aggregation](KindAggregationKNN, args, 1)
	if err != nil {
		return nil, err
	}
	k, err := argAs[int](KindAggregationKNN, args, 2)
	if err != nil {
		return nil, err
	}
	return built(NewAggregationKNN(queries, agg, k, optFns...))
}

func newDeleteFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindDelete, args, 1, 2); err != nil {
		return nil, err
	}
	target, err := argAs[object.Object](KindDelete, args, 0)
	if err != nil {
		return nil, err
	}
	limit, err := optionalArg(KindDelete, args, 1, 0)
	if err != nil {
		return nil, err
	}
	return built(NewDelete(target, limit, optFns...))
}

func newBulkInsertFromArgs(args []any, optFns ...Option) (Operation, error) {
	if err := checkArgCount(KindBulkInsert, args, 1, 1); err != nil {
		return nil, err
	}
	objects, err := argAs[[]object.Object](KindBulkInsert, args, 0)
	if err != nil {
		return nil, err
	}
	return built(NewBulkInsert(objects, optFns...))
}
