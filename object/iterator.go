package object

// Iterator is a pull iterator over candidate objects.
//
//	for it.Next() {
//	    o := it.Current()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator interface {
	Next() bool
	Current() Object
	Err() error
}

// BlockCounter is implemented by iterators that read objects in blocks.
type BlockCounter interface {
	BlocksRead() int
}

// Sizer is implemented by iterators that know their total number of objects.
type Sizer interface {
	Size() int
}

// SliceIterator iterates over a slice of objects.
type SliceIterator struct {
	objs []Object
	pos  int
}

// NewSliceIterator returns an iterator over objs. The slice is not copied.
func NewSliceIterator(objs ...Object) *SliceIterator {
	return &SliceIterator{objs: objs, pos: -1}
}

func (it *SliceIterator) Next() bool {
	if it.pos+1 >= len(it.objs) {
		it.pos = len(it.objs)
		return false
	}
	it.pos++
	return true
}

func (it *SliceIterator) Current() Object {
	if it.pos < 0 || it.pos >= len(it.objs) {
		return nil
	}
	return it.objs[it.pos]
}

func (it *SliceIterator) Err() error { return nil }
func (it *SliceIterator) Size() int  { return len(it.objs) }

// Collect drains it into a slice.
func Collect(it Iterator) ([]Object, error) {
	var out []Object
	for it.Next() {
		out = append(out, it.Current())
	}
	return out, it.Err()
}
