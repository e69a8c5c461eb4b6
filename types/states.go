package types

import (
	"fmt"
	"strings"
)

// StateSpace holds the two marker states of an environment: the initial
// state s0 and the sink state sf. It is immutable and shared by every batch
// of the environment.
type StateSpace struct {
	s0 *Tensor[int64]
	sf *Tensor[int64]
}

// NewStateSpace checks that s0 and sf have the same shape and differ.
func NewStateSpace(s0, sf *Tensor[int64]) (*StateSpace, error) {
	if !s0.shape.Equal(sf.shape) {
		return nil, &ShapeMismatchError{What: "sink state", Want: s0.shape, Got: sf.shape}
	}
	if s0.Equal(sf) {
		return nil, configErrorf("initial and sink states must differ, both are %v", s0)
	}
	return &StateSpace{s0: s0.Clone(), sf: sf.Clone()}, nil
}

func (sp *StateSpace) S0() *Tensor[int64] {
	return sp.s0.Clone()
}

func (sp *StateSpace) Sf() *Tensor[int64] {
	return sp.sf.Clone()
}

// StateShape is the shape of a single state
func (sp *StateSpace) StateShape() Shape {
	return sp.s0.Shape()
}

// Initial returns a batch where every element is s0
func (sp *StateSpace) Initial(batchShape Shape) (*States, error) {
	return sp.filled(batchShape, sp.s0)
}

// Sink returns a batch where every element is sf
func (sp *StateSpace) Sink(batchShape Shape) (*States, error) {
	return sp.filled(batchShape, sp.sf)
}

func (sp *StateSpace) filled(batchShape Shape, marker *Tensor[int64]) (*States, error) {
	if err := batchShape.validate(); err != nil {
		return nil, err
	}
	n := batchShape.Numel()
	block := len(marker.data)
	data := make([]int64, 0, n*block)
	for i := 0; i < n; i++ {
		data = append(data, marker.data...)
	}
	return &States{space: sp, values: &Tensor[int64]{shape: batchShape.Concat(sp.s0.shape), data: data}}, nil
}

// NewStates wraps a copy of values, whose trailing dimensions must equal
// the state shape.
func (sp *StateSpace) NewStates(values *Tensor[int64]) (*States, error) {
	rank := sp.s0.Rank()
	shape := values.shape
	if len(shape) < rank || !shape[len(shape)-rank:].Equal(sp.s0.shape) {
		return nil, &ShapeMismatchError{What: "state values", Want: sp.s0.shape, Got: shape}
	}
	return &States{space: sp, values: values.Clone()}, nil
}

// FromRows builds a batch from one flattened state per batch element,
// listed in row-major batch order.
func (sp *StateSpace) FromRows(batchShape Shape, rows [][]int64) (*States, error) {
	if err := batchShape.validate(); err != nil {
		return nil, err
	}
	if len(rows) != batchShape.Numel() {
		return nil, &ShapeMismatchError{What: "state rows", Want: batchShape, Got: Shape{len(rows)}}
	}
	block := len(sp.s0.data)
	data := make([]int64, 0, len(rows)*block)
	for _, r := range rows {
		if len(r) != block {
			return nil, &ShapeMismatchError{What: "state row", Want: sp.s0.shape, Got: Shape{len(r)}}
		}
		data = append(data, r...)
	}
	return &States{space: sp, values: &Tensor[int64]{shape: batchShape.Concat(sp.s0.shape), data: data}}, nil
}

// States is a batch of states with an arbitrary batch shape. Its raw values
// have shape batch_shape + state_shape.
type States struct {
	space  *StateSpace
	values *Tensor[int64]
}

func (s *States) Space() *StateSpace {
	return s.space
}

func (s *States) BatchShape() Shape {
	return s.values.shape[:s.batchRank()].Clone()
}

func (s *States) StateShape() Shape {
	return s.space.StateShape()
}

func (s *States) batchRank() int {
	return len(s.values.shape) - s.space.s0.Rank()
}

// Len is the number of states in the batch
func (s *States) Len() int {
	return s.values.shape[:s.batchRank()].Numel()
}

// Values returns a copy of the raw values
func (s *States) Values() *Tensor[int64] {
	return s.values.Clone()
}

// row is a view of the i-th state in row-major batch order. Never hand it out.
func (s *States) row(i int) []int64 {
	block := len(s.space.s0.data)
	return s.values.data[i*block : (i+1)*block]
}

// Row returns a copy of the i-th state in row-major batch order
func (s *States) Row(i int) []int64 {
	r := s.row(i)
	c := make([]int64, len(r))
	copy(c, r)
	return c
}

// Rows returns a copy of every state, in row-major batch order
func (s *States) Rows() [][]int64 {
	rows := make([][]int64, s.Len())
	for i := range rows {
		rows[i] = s.Row(i)
	}
	return rows
}

func equalRow(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *States) markerMask(marker *Tensor[int64]) *Tensor[bool] {
	mask := Zeros[bool](s.BatchShape())
	for i := range mask.data {
		mask.data[i] = equalRow(s.row(i), marker.data)
	}
	return mask
}

// IsInitialState flags the elements equal to s0. It is computed from the
// current values on every call.
func (s *States) IsInitialState() *Tensor[bool] {
	return s.markerMask(s.space.s0)
}

// IsSinkState flags the elements equal to sf. It is computed from the
// current values on every call.
func (s *States) IsSinkState() *Tensor[bool] {
	return s.markerMask(s.space.sf)
}

// Index selects a sub-batch. The terms address batch dimensions only; the
// state dimensions are always kept. The result does not share storage with s.
func (s *States) Index(ix ...Index) (*States, error) {
	values, err := s.values.indexUpTo(s.batchRank(), ix)
	if err != nil {
		return nil, err
	}
	return &States{space: s.space, values: values}, nil
}

// Set overwrites the addressed sub-batch with the states of value. The batch
// shape of value must equal the batch shape of the selection, or value must
// hold a single state that is copied to every selected position.
func (s *States) Set(ix []Index, value *States) error {
	if !value.StateShape().Equal(s.StateShape()) {
		return &ShapeMismatchError{What: "assigned states", Want: s.StateShape(), Got: value.StateShape()}
	}
	return s.values.assignUpTo(s.batchRank(), ix, value.values)
}

func (s *States) Clone() *States {
	return &States{space: s.space, values: s.values.Clone()}
}

// Reshape returns a copy with a new batch shape holding the same number of states
func (s *States) Reshape(batchShape Shape) (*States, error) {
	if batchShape.Numel() != s.Len() {
		return nil, &ShapeMismatchError{What: "batch reshape", Want: s.BatchShape(), Got: batchShape}
	}
	values, err := s.values.Reshape(batchShape.Concat(s.StateShape()))
	if err != nil {
		return nil, err
	}
	return &States{space: s.space, values: values}, nil
}

// Flatten returns a copy with a one dimensional batch shape
func (s *States) Flatten() *States {
	flat, _ := s.Reshape(Shape{s.Len()})
	return flat
}

func (s *States) Equal(other *States) bool {
	return other != nil && s.space == other.space && s.values.Equal(other.values)
}

func (s *States) String() string {
	return fmt.Sprintf("States(batch_shape=%v, state_shape=%v, values=%v)", s.BatchShape(), s.StateShape(), s.values)
}

// StackStates joins batches of identical batch shape along a new leading
// (time) dimension.
func StackStates(snapshots []*States) (*States, error) {
	if len(snapshots) == 0 {
		return nil, configErrorf("cannot stack an empty list of states")
	}
	space := snapshots[0].space
	values := make([]*Tensor[int64], len(snapshots))
	for i, s := range snapshots {
		if s.space != space {
			return nil, configErrorf("snapshot %d belongs to a different state space", i)
		}
		values[i] = s.values
	}
	stacked, err := Stack(values)
	if err != nil {
		return nil, err
	}
	return &States{space: space, values: stacked}, nil
}

func formatRow(r []int64) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
