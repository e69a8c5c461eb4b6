package grid

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/gfn-substrate/types"
)

func TestRewardGrid(t *testing.T) {
	g := newGrid(t, 2, 8)
	rewards, err := NewRewardGrid(g)
	require.NoError(t, err)

	c, r := rewards.Dims()
	assert.Equal(t, 8, c)
	assert.Equal(t, 8, r)
	assert.InDelta(t, 2.6, rewards.Z(1, 1), 1e-9)
	assert.InDelta(t, 0.1, rewards.Z(3, 4), 1e-9)
	assert.Equal(t, 5.0, rewards.X(5))
	assert.InDelta(t, 0.1, rewards.Min(), 1e-9)
	assert.InDelta(t, 2.6, rewards.Max(), 1e-9)
	assert.InDelta(t, 22.4, types.SumFloats(rewards.Rewards), 1e-9)

	_, err = NewRewardGrid(newGrid(t, 3, 4))
	var cfgErr *types.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSaveHeatmap(t *testing.T) {
	rewards, err := NewRewardGrid(newGrid(t, 2, 6))
	require.NoError(t, err)

	file := path.Join(t.TempDir(), "rewards.png")
	require.NoError(t, rewards.SaveHeatmap("rewards", file))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
