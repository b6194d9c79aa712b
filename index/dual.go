package index

import "errors"

// Proximity measures how far obj lies from key in index order. Smaller is
// nearer.
type Proximity[K, T any] func(key K, obj T) float64

// DualSearch expands a search outward from its current position: a forward
// cursor reads objects after the position and a cloned backward cursor reads
// the objects before it, so nothing is scanned twice.
//
// With a Proximity the side whose next object is nearer to the start key is
// taken first; without one the sides alternate.
type DualSearch[K, T any] struct {
	forward  *Search[K, T]
	backward *Search[K, T]
	key      K
	prox     Proximity[K, T]

	nextF, nextB       T
	hasF, hasB         bool
	primedF, primedB   bool
	current            T
	positioned         bool
	lastForward        bool
	preferBackwardTurn bool
}

// NewDualSearch forks s into a forward and a backward cursor. s should not have
// been advanced yet and must not be used directly afterwards.
func NewDualSearch[K, T any](s *Search[K, T], key K, prox Proximity[K, T]) *DualSearch[K, T] {
	return &DualSearch[K, T]{
		forward:  s,
		backward: s.Clone(),
		key:      key,
		prox:     prox,
	}
}

// Next moves to the next nearest object on either side.
func (d *DualSearch[K, T]) Next() bool {
	if !d.primedF {
		d.hasF = d.forward.Next()
		d.nextF = d.forward.Current()
		d.primedF = true
	}
	if !d.primedB {
		d.hasB = d.backward.Previous()
		d.nextB = d.backward.Current()
		d.primedB = true
	}

	var takeForward bool
	switch {
	case d.hasF && d.hasB:
		if d.prox != nil {
			takeForward = d.prox(d.key, d.nextF) <= d.prox(d.key, d.nextB)
		} else {
			takeForward = !d.preferBackwardTurn
			d.preferBackwardTurn = !d.preferBackwardTurn
		}
	case d.hasF:
		takeForward = true
	case d.hasB:
		takeForward = false
	default:
		var zero T
		d.current = zero
		d.positioned = false
		return false
	}

	if takeForward {
		d.current = d.nextF
		d.primedF = false
	} else {
		d.current = d.nextB
		d.primedB = false
	}
	d.lastForward = takeForward
	d.positioned = true
	return true
}

// Current returns the current object.
func (d *DualSearch[K, T]) Current() T { return d.current }

// CurrentObject returns the current object or ErrNoCurrentObject.
func (d *DualSearch[K, T]) CurrentObject() (T, error) {
	if !d.positioned {
		var zero T
		return zero, ErrNoCurrentObject
	}
	return d.current, nil
}

// LastForward reports whether the current object came from the forward side.
func (d *DualSearch[K, T]) LastForward() bool { return d.lastForward }

// Err returns the first error of either side.
func (d *DualSearch[K, T]) Err() error {
	return errors.Join(d.forward.Err(), d.backward.Err())
}

// Close closes both cursors.
func (d *DualSearch[K, T]) Close() error {
	return errors.Join(d.forward.Close(), d.backward.Close())
}
