package operation

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/simsearch/object"
	"github.com/hupe1980/simsearch/rank"
)

func scalar(x float32, locator string) *object.Vector {
	return object.NewVector([]float32{x}, object.WithLocator(locator))
}

func iterOf(objs ...object.Object) *object.SliceIterator {
	return object.NewSliceIterator(objs...)
}

func locators(items []rank.RankedObject) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Object.Locator()
	}
	return out
}

func distances(items []rank.RankedObject) []float32 {
	out := make([]float32, len(items))
	for i, it := range items {
		out[i] = it.Distance
	}
	return out
}

func answerOf(t *testing.T, op RankingOperation) []rank.RankedObject {
	t.Helper()
	return slices.Collect(op.Answer())
}

// scenario returns the query q at 0 and a:1, b:2, c:2 (at -2), d:5.
func scenario() (q, a, b, c, d *object.Vector) {
	return scalar(0, "q"), scalar(1, "a"), scalar(2, "b"), scalar(-2, "c"), scalar(5, "d")
}

func evaluate(t *testing.T, op QueryOperation, objs ...object.Object) int {
	t.Helper()
	n, err := op.Evaluate(iterOf(objs...))
	require.NoError(t, err)
	return n
}

// point is a one-dimensional object without an ID.
type point struct {
	x   float32
	loc string
}

func (p *point) ID() object.ID   { return object.NilID }
func (p *point) Locator() string { return p.loc }
func (p *point) Distance(o object.Object) float32 {
	q, ok := o.(*point)
	if !ok {
		return float32(math.Inf(1))
	}
	return float32(math.Abs(float64(p.x - q.x)))
}
