package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reversedIndexEnv numbers its states back to front
type reversedIndexEnv struct {
	*chainEnv
}

func (r reversedIndexEnv) GetStatesIndices(states *States) *Tensor[int64] {
	indices := r.chainEnv.GetStatesIndices(states)
	for i, v := range indices.data {
		if v >= 0 {
			indices.data[i] = int64(r.length) - 1 - v
		}
	}
	return indices
}

// layoutRewardEnv lays the chain out as a square and rewards the first state
// differently depending on the batch layout
type layoutRewardEnv struct {
	*chainEnv
	side int
}

func (l layoutRewardEnv) GridShape() Shape { return Shape{l.side, l.side} }

func (l layoutRewardEnv) StateAt(coords []int) []int64 {
	return []int64{int64(coords[0]*l.side + coords[1])}
}

func (l layoutRewardEnv) Reward(states *States) *Tensor[float64] {
	rewards := l.chainEnv.Reward(states)
	if states.batchRank() == 1 {
		rewards.data[0] += 1
	}
	return rewards
}

// negativeRewardEnv gives every state a negative reward
type negativeRewardEnv struct {
	*chainEnv
}

func (n negativeRewardEnv) Reward(states *States) *Tensor[float64] {
	return Full[float64](states.BatchShape(), -1)
}

// miscountedEnv declares more states than its grid holds
type miscountedEnv struct {
	*chainEnv
}

func (m miscountedEnv) NStates() int { return m.length + 1 }

func TestBuildGrid(t *testing.T) {
	env := newChainEnv(t, 5)
	grid, err := BuildGrid(env)
	require.NoError(t, err)
	assert.Equal(t, Shape{5}, grid.BatchShape())
	assert.Equal(t, [][]int64{{0}, {1}, {2}, {3}, {4}}, grid.Rows())

	flat, err := GetFlatGrid(env)
	require.NoError(t, err)
	assert.True(t, grid.Equal(flat))

	_, err = BuildGrid(miscountedEnv{env})
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCheckGrid(t *testing.T) {
	env := newChainEnv(t, 5)
	report, err := CheckGrid(env)
	require.NoError(t, err)
	assert.Equal(t, 5, report.NStates)
	assert.Equal(t, Shape{5}, report.GridShape)
	assert.Equal(t, 15.0, report.GridSum)
	assert.Equal(t, report.GridSum, report.FlatSum)
	assert.Contains(t, report.String(), "Z(grid)=15")
}

func TestCheckGridFailures(t *testing.T) {
	env := newChainEnv(t, 4)
	var massErr *MassConservationError

	_, err := CheckGrid(layoutRewardEnv{chainEnv: env, side: 2})
	require.ErrorAs(t, err, &massErr)
	assert.Equal(t, massErr.GridSum+1, massErr.FlatSum)

	_, err = CheckGrid(reversedIndexEnv{env})
	require.ErrorAs(t, err, &massErr)
	assert.Contains(t, massErr.Reason, "flat position 0")

	_, err = CheckGrid(negativeRewardEnv{env})
	require.ErrorAs(t, err, &massErr)
	assert.Contains(t, massErr.Reason, "negative reward")

	_, err = CheckGrid(miscountedEnv{env})
	assert.Error(t, err)
}
