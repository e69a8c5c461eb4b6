package types

import (
	"fmt"

	"github.com/zeu5/gfn-substrate/util"
	"gonum.org/v1/gonum/floats"
)

// BuildGrid enumerates the state space of env with one batch dimension per
// state coordinate.
func BuildGrid(env EnumerableEnv) (*States, error) {
	gridShape := env.GridShape()
	if err := gridShape.validate(); err != nil {
		return nil, err
	}
	n := gridShape.Numel()
	if n != env.NStates() {
		return nil, configErrorf("grid shape %v holds %d states, environment declares %d", gridShape, n, env.NStates())
	}
	rows := make([][]int64, n)
	for i := range rows {
		rows[i] = env.StateAt(gridShape.unravel(i))
	}
	return env.Space().FromRows(gridShape, rows)
}

// GetFlatGrid enumerates the same states as BuildGrid, in the same order,
// with a one dimensional batch shape.
func GetFlatGrid(env EnumerableEnv) (*States, error) {
	grid, err := BuildGrid(env)
	if err != nil {
		return nil, err
	}
	return grid.Flatten(), nil
}

type GridReport struct {
	NStates   int
	GridShape Shape
	// Z, the total reward over each layout
	GridSum float64
	FlatSum float64
}

func (r *GridReport) String() string {
	return fmt.Sprintf("grid %v with %d states, Z(grid)=%v Z(flat)=%v", r.GridShape, r.NStates, r.GridSum, r.FlatSum)
}

func stateMultiSet(states *States) util.MultiSet {
	m := make(util.MultiSet, states.Len())
	for i := range m {
		m[i] = util.StringElem(formatRow(states.row(i)))
	}
	return m
}

// CheckGrid validates the enumeration of env: both layouts must carry the
// same reward mass and the same multiset of states, rewards must be
// non-negative, and the state indices of the flat grid must be 0..N-1 in order.
func CheckGrid(env EnumerableEnv) (*GridReport, error) {
	grid, err := BuildGrid(env)
	if err != nil {
		return nil, err
	}
	flat := grid.Flatten()

	gridRewards := env.Reward(grid)
	flatRewards := env.Reward(flat)
	report := &GridReport{
		NStates:   env.NStates(),
		GridShape: env.GridShape(),
		GridSum:   SumFloats(gridRewards),
		FlatSum:   SumFloats(flatRewards),
	}
	fail := func(format string, args ...interface{}) error {
		return &MassConservationError{GridSum: report.GridSum, FlatSum: report.FlatSum, Reason: fmt.Sprintf(format, args...)}
	}

	if !gridRewards.shape.Equal(grid.BatchShape()) {
		return report, fail("grid rewards have shape %v, want %v", gridRewards.shape, grid.BatchShape())
	}
	if report.GridSum != report.FlatSum {
		return report, fail("reward mass differs between layouts")
	}
	if len(flatRewards.data) > 0 && floats.Min(flatRewards.data) < 0 {
		return report, fail("negative reward %v", floats.Min(flatRewards.data))
	}
	if gridStates, flatStates := stateMultiSet(grid), stateMultiSet(flat); !gridStates.Eq(flatStates) {
		return report, fail("layouts hold different states: %v", gridStates.Diff(flatStates))
	}

	indices := env.GetStatesIndices(flat)
	if !indices.shape.Equal(Shape{report.NStates}) {
		return report, fail("state indices have shape %v, want %v", indices.shape, Shape{report.NStates})
	}
	for i, idx := range indices.data {
		if idx != int64(i) {
			return report, fail("state %s at flat position %d has index %d", formatRow(flat.row(i)), i, idx)
		}
	}
	gridIndices := env.GetStatesIndices(grid)
	if !gridIndices.shape.Equal(grid.BatchShape()) {
		return report, fail("grid state indices have shape %v, want %v", gridIndices.shape, grid.BatchShape())
	}
	return report, nil
}
