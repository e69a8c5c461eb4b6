package types

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Shape lists the sizes of the dimensions of a tensor, outermost first.
// The empty shape describes a scalar.
type Shape []int

func (s Shape) Rank() int {
	return len(s)
}

// Numel is the number of elements a tensor of this shape holds
func (s Shape) Numel() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

func (s Shape) Clone() Shape {
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

func (s Shape) Concat(other Shape) Shape {
	c := make(Shape, 0, len(s)+len(other))
	c = append(c, s...)
	return append(c, other...)
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Shape) validate() error {
	for i, d := range s {
		if d < 0 {
			return configErrorf("negative dimension %d at position %d of shape %v", d, i, s)
		}
	}
	return nil
}

// row-major strides
func (s Shape) strides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// unravel converts a row-major flat position into coordinates of s
func (s Shape) unravel(flat int) []int {
	coords := make([]int, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 0 {
			continue
		}
		coords[i] = flat % s[i]
		flat /= s[i]
	}
	return coords
}

// Scalar is the set of element types a Tensor can hold.
type Scalar interface {
	~int64 | ~float64 | ~bool
}

// Tensor is a dense row-major N-dimensional array. Every operation except
// SetAt and Assign returns fresh storage, so tensors never alias each other.
type Tensor[T Scalar] struct {
	shape Shape
	data  []T
}

// NewTensor copies data into a tensor of the given shape.
func NewTensor[T Scalar](shape Shape, data []T) (*Tensor[T], error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.Numel() {
		return nil, &ShapeMismatchError{What: "tensor data", Want: Shape{shape.Numel()}, Got: Shape{len(data)}}
	}
	d := make([]T, len(data))
	copy(d, data)
	return &Tensor[T]{shape: shape.Clone(), data: d}, nil
}

// Full returns a tensor with every element set to v. The shape must not
// contain negative dimensions.
func Full[T Scalar](shape Shape, v T) *Tensor[T] {
	data := make([]T, shape.Numel())
	for i := range data {
		data[i] = v
	}
	return &Tensor[T]{shape: shape.Clone(), data: data}
}

func Zeros[T Scalar](shape Shape) *Tensor[T] {
	return &Tensor[T]{shape: shape.Clone(), data: make([]T, shape.Numel())}
}

// FromSlice builds a one dimensional tensor
func FromSlice[T Scalar](values ...T) *Tensor[T] {
	d := make([]T, len(values))
	copy(d, values)
	return &Tensor[T]{shape: Shape{len(values)}, data: d}
}

// Stack joins tensors of identical shape along a new leading dimension.
func Stack[T Scalar](ts []*Tensor[T]) (*Tensor[T], error) {
	if len(ts) == 0 {
		return nil, configErrorf("cannot stack an empty list of tensors")
	}
	inner := ts[0].shape
	data := make([]T, 0, len(ts)*inner.Numel())
	for i, t := range ts {
		if !t.shape.Equal(inner) {
			return nil, &ShapeMismatchError{What: fmt.Sprintf("stack element %d", i), Want: inner, Got: t.shape}
		}
		data = append(data, t.data...)
	}
	return &Tensor[T]{shape: Shape{len(ts)}.Concat(inner), data: data}, nil
}

func (t *Tensor[T]) Shape() Shape {
	return t.shape.Clone()
}

func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

func (t *Tensor[T]) Numel() int {
	return len(t.data)
}

// Data returns a copy of the elements in row-major order
func (t *Tensor[T]) Data() []T {
	d := make([]T, len(t.data))
	copy(d, t.data)
	return d
}

func (t *Tensor[T]) Clone() *Tensor[T] {
	return &Tensor[T]{shape: t.shape.Clone(), data: t.Data()}
}

func (t *Tensor[T]) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor of rank %d indexed with %d coordinates", len(t.shape), len(idx)))
	}
	off := 0
	strides := t.shape.strides()
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("coordinate %d out of range for dimension %d of size %d", v, i, t.shape[i]))
		}
		off += v * strides[i]
	}
	return off
}

// At returns a single element. It panics when the coordinates are out of
// range, like slice indexing does.
func (t *Tensor[T]) At(idx ...int) T {
	return t.data[t.offset(idx)]
}

func (t *Tensor[T]) SetAt(v T, idx ...int) {
	t.data[t.offset(idx)] = v
}

// Reshape returns a copy with a new shape holding the same number of elements.
func (t *Tensor[T]) Reshape(shape Shape) (*Tensor[T], error) {
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if shape.Numel() != len(t.data) {
		return nil, &ShapeMismatchError{What: "reshape", Want: t.shape, Got: shape}
	}
	return &Tensor[T]{shape: shape.Clone(), data: t.Data()}, nil
}

func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if other == nil || !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

func (t *Tensor[T]) String() string {
	var b strings.Builder
	t.format(&b, 0, 0)
	return b.String()
}

func (t *Tensor[T]) format(b *strings.Builder, dim, off int) {
	if dim == len(t.shape) {
		fmt.Fprint(b, t.data[off])
		return
	}
	stride := t.shape[dim+1:].Numel()
	b.WriteString("[")
	for i := 0; i < t.shape[dim]; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		t.format(b, dim+1, off+i*stride)
	}
	b.WriteString("]")
}

// SumFloats adds up every element of t.
func SumFloats(t *Tensor[float64]) float64 {
	return floats.Sum(t.data)
}

// Count returns the number of true elements
func Count(t *Tensor[bool]) int {
	n := 0
	for _, v := range t.data {
		if v {
			n++
		}
	}
	return n
}

// AllTrue reports whether every element of t is true. It is true for empty tensors.
func AllTrue(t *Tensor[bool]) bool {
	return Count(t) == len(t.data)
}

// Not returns the element-wise negation of t.
func Not(t *Tensor[bool]) *Tensor[bool] {
	out := t.Clone()
	for i, v := range out.data {
		out.data[i] = !v
	}
	return out
}
