package object

import (
	"fmt"
	"math"
)

// Aggregation combines per-sub-object distances into one distance.
//
// Implementations used for ranking should be monotone: increasing any input
// must never decrease the result.
type Aggregation interface {
	Aggregate(distances []float32) float32
	Name() string
}

type sumAggregation struct{}

func (sumAggregation) Name() string { return "sum" }

func (sumAggregation) Aggregate(d []float32) float32 {
	var s float32
	for _, x := range d {
		s += x
	}
	return s
}

type maxAggregation struct{}

func (maxAggregation) Name() string { return "max" }

func (maxAggregation) Aggregate(d []float32) float32 {
	if len(d) == 0 {
		return 0
	}
	m := d[0]
	for _, x := range d[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

type minAggregation struct{}

func (minAggregation) Name() string { return "min" }

func (minAggregation) Aggregate(d []float32) float32 {
	if len(d) == 0 {
		return float32(math.Inf(1))
	}
	m := d[0]
	for _, x := range d[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

type meanAggregation struct{}

func (meanAggregation) Name() string { return "mean" }

func (meanAggregation) Aggregate(d []float32) float32 {
	if len(d) == 0 {
		return 0
	}
	return sumAggregation{}.Aggregate(d) / float32(len(d))
}

// WeightedSum multiplies each distance by its weight before summing.
// Missing weights count as 1.
type WeightedSum struct {
	Weights []float32
}

// Name returns "weighted-sum".
func (WeightedSum) Name() string { return "weighted-sum" }

// Aggregate implements Aggregation.
func (w WeightedSum) Aggregate(d []float32) float32 {
	var s float32
	for i, x := range d {
		if i < len(w.Weights) {
			s += w.Weights[i] * x
		} else {
			s += x
		}
	}
	return s
}

// Built-in aggregations.
var (
	Sum  Aggregation = sumAggregation{}
	Max  Aggregation = maxAggregation{}
	Min  Aggregation = minAggregation{}
	Mean Aggregation = meanAggregation{}
)

// AggregationByName returns a built-in aggregation. weights is only used by
// "weighted-sum".
func AggregationByName(name string, weights []float32) (Aggregation, error) {
	switch name {
	case "sum", "":
		return Sum, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	case "mean":
		return Mean, nil
	case "weighted-sum":
		return WeightedSum{Weights: weights}, nil
	default:
		return nil, fmt.Errorf("unknown aggregation %q", name)
	}
}

// AggregationWeights returns the weights of a weighted aggregation or nil.
func AggregationWeights(a Aggregation) []float32 {
	if w, ok := a.(WeightedSum); ok {
		return w.Weights
	}
	return nil
}
