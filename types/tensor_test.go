package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arange(shape Shape) *Tensor[int64] {
	t := Zeros[int64](shape)
	for i := range t.data {
		t.data[i] = int64(i)
	}
	return t
}

func TestShape(t *testing.T) {
	assert.Equal(t, 1, Shape{}.Numel())
	assert.Equal(t, 0, Shape{2, 0, 3}.Numel())
	assert.Equal(t, 24, Shape{2, 3, 4}.Numel())
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.strides())
	assert.Equal(t, []int{1, 2, 3}, Shape{2, 3, 4}.unravel(23))
	assert.Equal(t, "(2, 3)", Shape{2, 3}.String())

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, Shape{2, -1}.validate(), &cfgErr)
}

func TestNewTensor(t *testing.T) {
	data := []int64{1, 2, 3, 4, 5, 6}
	tensor, err := NewTensor(Shape{2, 3}, data)
	require.NoError(t, err)
	data[0] = 100
	assert.Equal(t, int64(1), tensor.At(0, 0), "tensor must copy its input")
	assert.Equal(t, int64(6), tensor.At(1, 2))

	_, err = NewTensor(Shape{4}, []int64{1, 2})
	var shapeErr *ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)

	scalar := Full[float64](Shape{}, 2.5)
	assert.Equal(t, 2.5, scalar.At())
	assert.Equal(t, "2.5", scalar.String())
}

func TestTensorIndexBasic(t *testing.T) {
	x := arange(Shape{2, 3, 4})

	row, err := x.Index(At(1))
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 4}, row.Shape())
	assert.Equal(t, int64(12), row.At(0, 0))

	elem, err := x.Index(At(-1), At(-1), At(-1))
	require.NoError(t, err)
	assert.Equal(t, Shape{}, elem.Shape())
	assert.Equal(t, int64(23), elem.At())

	span, err := x.Index(All(), Span(1, 3))
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 4}, span.Shape())
	assert.Equal(t, int64(4), span.At(0, 0, 0))
	assert.Equal(t, int64(23), span.At(1, 1, 3))

	strided, err := x.Index(At(0), All(), Strided(0, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2, 4, 6, 8, 10}, strided.Data())

	tail, err := x.Index(At(0), From(-1))
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 4}, tail.Shape())
	assert.Equal(t, []int64{8, 9, 10, 11}, tail.Data())

	empty, err := x.Index(Span(5, 9))
	require.NoError(t, err)
	assert.Equal(t, Shape{0, 3, 4}, empty.Shape())
}

func TestTensorIndexAdvanced(t *testing.T) {
	x := arange(Shape{2, 3, 2})

	taken, err := x.Index(All(), Take(2, 0))
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 2}, taken.Shape())
	assert.Equal(t, []int64{4, 5, 0, 1, 10, 11, 6, 7}, taken.Data())

	full := FromSlice(true, false, true, false, false, true)
	fullMask, err := full.Reshape(Shape{2, 3})
	require.NoError(t, err)
	selected, err := x.Index(Mask(fullMask))
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, selected.Shape())
	assert.Equal(t, []int64{0, 1, 4, 5, 10, 11}, selected.Data())

	prefix, err := x.Index(Mask(FromSlice(false, true)))
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 3, 2}, prefix.Shape())
	assert.Equal(t, int64(6), prefix.At(0, 0, 0))

	none, err := x.Index(Mask(FromSlice(false, false)))
	require.NoError(t, err)
	assert.Equal(t, Shape{0, 3, 2}, none.Shape())
}

func TestTensorIndexErrors(t *testing.T) {
	x := arange(Shape{2, 3})

	_, err := x.Index(At(2))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = x.Index(At(0), At(0), At(0))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = x.Index(Take(0, 3))
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	var shapeErr *ShapeMismatchError
	_, err = x.Index(Mask(FromSlice(true, false, true)))
	assert.ErrorAs(t, err, &shapeErr)

	var cfgErr *ConfigurationError
	_, err = x.Index(Take(0), Take(1))
	assert.ErrorAs(t, err, &cfgErr)
	_, err = x.Index(Strided(0, 2, 0))
	assert.ErrorAs(t, err, &cfgErr)
	_, err = x.Index(Mask(nil))
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorAs(t, x.Assign([]Index{Mask(nil)}, FromSlice[int64](1)), &cfgErr)
}

func TestTensorIndexCopies(t *testing.T) {
	x := arange(Shape{2, 3})
	row, err := x.Index(At(0))
	require.NoError(t, err)
	row.SetAt(100, 0)
	assert.Equal(t, int64(0), x.At(0, 0))

	data := x.Data()
	data[1] = 100
	assert.Equal(t, int64(1), x.At(0, 1))
}

func TestTensorAssign(t *testing.T) {
	x := Zeros[int64](Shape{2, 3})

	require.NoError(t, x.Assign([]Index{At(1)}, FromSlice[int64](7, 8, 9)))
	assert.Equal(t, []int64{0, 0, 0, 7, 8, 9}, x.Data())

	require.NoError(t, x.Assign([]Index{All(), At(0)}, FromSlice[int64](5)))
	assert.Equal(t, []int64{5, 0, 0, 5, 8, 9}, x.Data())

	mask, err := NewTensor(Shape{2, 3}, []bool{false, true, false, false, false, true})
	require.NoError(t, err)
	require.NoError(t, x.Assign([]Index{Mask(mask)}, FromSlice[int64](1, 2)))
	assert.Equal(t, []int64{5, 1, 0, 5, 8, 2}, x.Data())

	err = x.Assign([]Index{At(0)}, FromSlice[int64](1, 2))
	var shapeErr *ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []int64{5, 1, 0, 5, 8, 2}, x.Data(), "failed assignment must not write")

	// same element count, transposed shape
	transposed := arange(Shape{3, 2})
	err = x.Assign([]Index{All(), All()}, transposed)
	assert.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []int64{5, 1, 0, 5, 8, 2}, x.Data())

	// leading unit dimensions are ignored
	row, err := NewTensor(Shape{1, 3}, []int64{4, 4, 4})
	require.NoError(t, err)
	require.NoError(t, x.Assign([]Index{At(0)}, row))
	assert.Equal(t, []int64{4, 4, 4, 5, 8, 2}, x.Data())
}

func TestStackReshape(t *testing.T) {
	a := FromSlice[int64](1, 2)
	b := FromSlice[int64](3, 4)
	stacked, err := Stack([]*Tensor[int64]{a, b})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, stacked.Shape())
	assert.Equal(t, "[[1 2] [3 4]]", stacked.String())

	_, err = Stack([]*Tensor[int64]{a, FromSlice[int64](1)})
	var shapeErr *ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)

	reshaped, err := stacked.Reshape(Shape{4})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, reshaped.Data())
	_, err = stacked.Reshape(Shape{3})
	assert.ErrorAs(t, err, &shapeErr)
}

func TestBoolHelpers(t *testing.T) {
	m := FromSlice(true, false, true)
	assert.Equal(t, 2, Count(m))
	assert.False(t, AllTrue(m))
	assert.Equal(t, []bool{false, true, false}, Not(m).Data())
	assert.True(t, AllTrue(Zeros[bool](Shape{0})))
	assert.InDelta(t, 6.0, SumFloats(FromSlice(1.0, 2.0, 3.0)), 1e-12)
}
