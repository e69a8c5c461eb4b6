package grid

import (
	"fmt"

	"github.com/zeu5/gfn-substrate/types"
	"golang.org/x/exp/rand"
)

// Config of a HyperGrid environment
type Config struct {
	NDim   int
	Height int
	// Reward constants, see HyperGrid.Reward
	R0 float64
	R1 float64
	R2 float64
}

func DefaultConfig() Config {
	return Config{
		NDim:   2,
		Height: 8,
		R0:     0.1,
		R1:     0.5,
		R2:     2.0,
	}
}

// HyperGrid is the grid {0, ..., Height-1}^NDim. Forward action d < NDim
// increments coordinate d, backward action d decrements it; action NDim exits.
// s0 is the origin and sf is the all -1 vector.
type HyperGrid struct {
	config Config
	space  *types.StateSpace
}

var _ types.EnumerableEnv = &HyperGrid{}

func NewHyperGrid(config Config) (*HyperGrid, error) {
	if config.NDim < 1 {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("hypergrid needs at least one dimension, got %d", config.NDim)}
	}
	if config.Height < 2 {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("hypergrid height must be at least 2, got %d", config.Height)}
	}
	if config.R0 < 0 || config.R1 < 0 || config.R2 < 0 {
		return nil, &types.ConfigurationError{Reason: "hypergrid reward constants must be non-negative"}
	}
	space, err := types.NewStateSpace(
		types.Zeros[int64](types.Shape{config.NDim}),
		types.Full[int64](types.Shape{config.NDim}, -1),
	)
	if err != nil {
		return nil, err
	}
	return &HyperGrid{config: config, space: space}, nil
}

func (g *HyperGrid) Config() Config {
	return g.config
}

func (g *HyperGrid) Space() *types.StateSpace {
	return g.space
}

func (g *HyperGrid) NActions() int {
	return g.config.NDim + 1
}

func (g *HyperGrid) String() string {
	return fmt.Sprintf("HyperGrid(ndim=%d, height=%d)", g.config.NDim, g.config.Height)
}

func (g *HyperGrid) Reset(batchShape types.Shape, randomInit bool) (*types.States, error) {
	if randomInit {
		return g.RandomStates(batchShape, nil)
	}
	return g.space.Initial(batchShape)
}

// RandomStates draws every element uniformly from the grid. A nil source
// uses the global one.
func (g *HyperGrid) RandomStates(batchShape types.Shape, src rand.Source) (*types.States, error) {
	// validates the batch shape
	states, err := g.space.Initial(batchShape)
	if err != nil {
		return nil, err
	}
	intn := rand.Intn
	if src != nil {
		intn = rand.New(src).Intn
	}
	rows := make([][]int64, states.Len())
	for i := range rows {
		rows[i] = make([]int64, g.config.NDim)
		for d := range rows[i] {
			rows[i][d] = int64(intn(g.config.Height))
		}
	}
	return g.space.FromRows(batchShape, rows)
}

func (g *HyperGrid) masks(states *types.States, legal func(row []int64, initial, sink bool) []bool) *types.Tensor[bool] {
	initial := states.IsInitialState().Data()
	sink := states.IsSinkState().Data()
	data := make([]bool, 0, states.Len()*g.NActions())
	for i, row := range states.Rows() {
		data = append(data, legal(row, initial[i], sink[i])...)
	}
	masks, _ := types.NewTensor(states.BatchShape().Concat(types.Shape{g.NActions()}), data)
	return masks
}

// ForwardMasks allows incrementing coordinates below Height-1 and exiting.
// From sf only the exit action is legal.
func (g *HyperGrid) ForwardMasks(states *types.States) *types.Tensor[bool] {
	return g.masks(states, func(row []int64, _, sink bool) []bool {
		legal := make([]bool, g.NActions())
		legal[g.config.NDim] = true
		if sink {
			return legal
		}
		for d, v := range row {
			legal[d] = v+1 < int64(g.config.Height)
		}
		return legal
	})
}

// BackwardMasks allows decrementing positive coordinates. At s0 only the
// no-op is legal and sf has no backward action.
func (g *HyperGrid) BackwardMasks(states *types.States) *types.Tensor[bool] {
	return g.masks(states, func(row []int64, initial, sink bool) []bool {
		legal := make([]bool, g.NActions())
		if initial {
			legal[g.config.NDim] = true
			return legal
		}
		if sink {
			return legal
		}
		for d, v := range row {
			legal[d] = v > 0
		}
		return legal
	})
}

func (g *HyperGrid) Step(states *types.States, actions *types.Tensor[int64]) (*types.States, error) {
	if err := types.ValidateActions(states, actions, g.ForwardMasks(states), false); err != nil {
		return nil, err
	}
	sf := g.space.Sf().Data()
	rows := states.Rows()
	for i, a := range actions.Data() {
		if a == int64(g.config.NDim) {
			rows[i] = sf
			continue
		}
		rows[i][a] += 1
	}
	return g.space.FromRows(states.BatchShape(), rows)
}

func (g *HyperGrid) BackwardStep(states *types.States, actions *types.Tensor[int64]) (*types.States, error) {
	if err := types.ValidateActions(states, actions, g.BackwardMasks(states), true); err != nil {
		return nil, err
	}
	rows := states.Rows()
	for i, a := range actions.Data() {
		// the no-op at s0 leaves the state untouched
		if a == int64(g.config.NDim) {
			continue
		}
		rows[i][a] -= 1
	}
	return g.space.FromRows(states.BatchShape(), rows)
}

func (g *HyperGrid) Reward(states *types.States) *types.Tensor[float64] {
	rewards := make([]float64, states.Len())
	for i, row := range states.Rows() {
		rewards[i] = g.reward(row)
	}
	r, _ := types.NewTensor(states.BatchShape(), rewards)
	return r
}

func (g *HyperGrid) NStates() int {
	return g.GridShape().Numel()
}

func (g *HyperGrid) GridShape() types.Shape {
	shape := make(types.Shape, g.config.NDim)
	for d := range shape {
		shape[d] = g.config.Height
	}
	return shape
}

func (g *HyperGrid) StateAt(coords []int) []int64 {
	state := make([]int64, len(coords))
	for d, c := range coords {
		state[d] = int64(c)
	}
	return state
}

func (g *HyperGrid) GetStatesIndices(states *types.States) *types.Tensor[int64] {
	indices := make([]int64, states.Len())
	for i, row := range states.Rows() {
		indices[i] = g.index(row)
	}
	t, _ := types.NewTensor(states.BatchShape(), indices)
	return t
}

// index is the row-major position of a state in the grid, -1 outside of it
func (g *HyperGrid) index(row []int64) int64 {
	h := int64(g.config.Height)
	idx := int64(0)
	for _, v := range row {
		if v < 0 || v >= h {
			return -1
		}
		idx = idx*h + v
	}
	return idx
}
