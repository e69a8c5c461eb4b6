package types

import "fmt"

// Index is one term of an indexing expression. Terms address the leading
// dimensions of a tensor in order; dimensions left unaddressed are kept whole.
type Index interface {
	// resolve lists the coordinates selected among the given dimensions
	resolve(dims Shape) (selection, error)
}

type selection struct {
	// number of source dimensions consumed by the term
	consumed int
	// whether the term produces an output dimension
	keep bool
	// selected coordinates, each of length consumed
	coords [][]int
}

type intIndex int

// At selects a single position and drops the dimension. Negative positions
// count from the end.
func At(i int) Index {
	return intIndex(i)
}

func normalize(i, size int) (int, error) {
	if i < 0 {
		i += size
	}
	if i < 0 || i >= size {
		return 0, fmt.Errorf("%w: position %d in dimension of size %d", ErrIndexOutOfRange, i, size)
	}
	return i, nil
}

func (i intIndex) resolve(dims Shape) (selection, error) {
	if len(dims) < 1 {
		return selection{}, fmt.Errorf("%w: too many indices", ErrIndexOutOfRange)
	}
	p, err := normalize(int(i), dims[0])
	if err != nil {
		return selection{}, err
	}
	return selection{consumed: 1, keep: false, coords: [][]int{{p}}}, nil
}

type sliceIndex struct {
	start    int
	stop     int
	step     int
	hasStart bool
	hasStop  bool
}

// All keeps a whole dimension
func All() Index {
	return sliceIndex{step: 1}
}

// Span selects [start, stop) and keeps the dimension. Bounds are clamped and
// negative bounds count from the end.
func Span(start, stop int) Index {
	return sliceIndex{start: start, stop: stop, step: 1, hasStart: true, hasStop: true}
}

// From selects [start, end of dimension)
func From(start int) Index {
	return sliceIndex{start: start, step: 1, hasStart: true}
}

// Strided selects every step-th position of [start, stop). Step must be positive.
func Strided(start, stop, step int) Index {
	return sliceIndex{start: start, stop: stop, step: step, hasStart: true, hasStop: true}
}

func clamp(i, size int) int {
	if i < 0 {
		i += size
	}
	if i < 0 {
		return 0
	}
	if i > size {
		return size
	}
	return i
}

func (s sliceIndex) resolve(dims Shape) (selection, error) {
	if len(dims) < 1 {
		return selection{}, fmt.Errorf("%w: too many indices", ErrIndexOutOfRange)
	}
	if s.step <= 0 {
		return selection{}, configErrorf("slice step must be positive, got %d", s.step)
	}
	size := dims[0]
	start, stop := 0, size
	if s.hasStart {
		start = clamp(s.start, size)
	}
	if s.hasStop {
		stop = clamp(s.stop, size)
	}
	coords := make([][]int, 0)
	for i := start; i < stop; i += s.step {
		coords = append(coords, []int{i})
	}
	return selection{consumed: 1, keep: true, coords: coords}, nil
}

type takeIndex []int

// Take gathers the given positions, in order, along one dimension.
func Take(positions ...int) Index {
	t := make(takeIndex, len(positions))
	copy(t, positions)
	return t
}

func (t takeIndex) resolve(dims Shape) (selection, error) {
	if len(dims) < 1 {
		return selection{}, fmt.Errorf("%w: too many indices", ErrIndexOutOfRange)
	}
	coords := make([][]int, len(t))
	for i, v := range t {
		p, err := normalize(v, dims[0])
		if err != nil {
			return selection{}, err
		}
		coords[i] = []int{p}
	}
	return selection{consumed: 1, keep: true, coords: coords}, nil
}

type maskIndex struct {
	mask *Tensor[bool]
}

// Mask selects the true positions of a boolean tensor whose shape matches
// the dimensions it addresses. Those dimensions collapse into one.
func Mask(m *Tensor[bool]) Index {
	return maskIndex{mask: m}
}

func (m maskIndex) resolve(dims Shape) (selection, error) {
	if m.mask == nil {
		return selection{}, configErrorf("nil boolean mask")
	}
	k := m.mask.Rank()
	if k > len(dims) || !m.mask.shape.Equal(dims[:k]) {
		want := dims
		if k <= len(dims) {
			want = dims[:k]
		}
		return selection{}, &ShapeMismatchError{What: "boolean mask", Want: want, Got: m.mask.shape}
	}
	coords := make([][]int, 0)
	for i, v := range m.mask.data {
		if v {
			coords = append(coords, m.mask.shape.unravel(i))
		}
	}
	return selection{consumed: k, keep: true, coords: coords}, nil
}

func isAdvanced(ix Index) bool {
	switch ix.(type) {
	case takeIndex, maskIndex:
		return true
	}
	return false
}

// indexPlan is a resolved indexing expression over a tensor of shape src
type indexPlan struct {
	groups  []selection
	strides []int
	out     Shape
	// the trailing, unaddressed dimensions and their element count
	trail Shape
	block int
}

// planIndex resolves ix against the first limit dimensions of src.
func planIndex(src Shape, limit int, ix []Index) (*indexPlan, error) {
	p := &indexPlan{strides: src.strides(), out: Shape{}}
	pos := 0
	advanced := 0
	for _, term := range ix {
		if isAdvanced(term) {
			advanced++
			if advanced > 1 {
				return nil, configErrorf("at most one integer-array or mask term per index expression")
			}
		}
		sel, err := term.resolve(src[pos:limit])
		if err != nil {
			return nil, err
		}
		p.groups = append(p.groups, sel)
		if sel.keep {
			p.out = append(p.out, len(sel.coords))
		}
		pos += sel.consumed
	}
	trail := src[pos:]
	p.out = p.out.Concat(trail)
	p.trail = trail.Clone()
	p.block = trail.Numel()
	return p, nil
}

// each visits the offsets of the selected blocks in row-major output order
func (p *indexPlan) each(fn func(off int)) {
	var rec func(g, off, dim int)
	rec = func(g, off, dim int) {
		if g == len(p.groups) {
			fn(off)
			return
		}
		sel := p.groups[g]
		for _, c := range sel.coords {
			o := off
			for k, v := range c {
				o += v * p.strides[dim+k]
			}
			rec(g+1, o, dim+sel.consumed)
		}
	}
	rec(0, 0, 0)
}

// Index evaluates an indexing expression and returns an independent tensor.
func (t *Tensor[T]) Index(ix ...Index) (*Tensor[T], error) {
	return t.indexUpTo(len(t.shape), ix)
}

func (t *Tensor[T]) indexUpTo(limit int, ix []Index) (*Tensor[T], error) {
	p, err := planIndex(t.shape, limit, ix)
	if err != nil {
		return nil, err
	}
	data := make([]T, 0, p.out.Numel())
	p.each(func(off int) {
		data = append(data, t.data[off:off+p.block]...)
	})
	return &Tensor[T]{shape: p.out, data: data}, nil
}

// Assign overwrites the addressed elements in place. src must have the shape
// of the selection, or the shape of one trailing block, which is then
// broadcast to every selected position. Leading dimensions of size 1 are
// ignored on both sides.
func (t *Tensor[T]) Assign(ix []Index, src *Tensor[T]) error {
	return t.assignUpTo(len(t.shape), ix, src)
}

func (t *Tensor[T]) assignUpTo(limit int, ix []Index, src *Tensor[T]) error {
	p, err := planIndex(t.shape, limit, ix)
	if err != nil {
		return err
	}
	shape := squeeze(src.shape)
	var next func(i int) []T
	switch {
	case shape.Equal(squeeze(p.out)):
		next = func(i int) []T { return src.data[i*p.block : (i+1)*p.block] }
	case shape.Equal(squeeze(p.trail)):
		next = func(int) []T { return src.data }
	default:
		return &ShapeMismatchError{What: "assignment", Want: p.out, Got: src.shape}
	}
	i := 0
	p.each(func(off int) {
		copy(t.data[off:off+p.block], next(i))
		i++
	})
	return nil
}

// squeeze drops the leading dimensions of size 1
func squeeze(s Shape) Shape {
	for len(s) > 0 && s[0] == 1 {
		s = s[1:]
	}
	return s
}
