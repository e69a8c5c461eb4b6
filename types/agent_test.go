package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplerBackward(t *testing.T) {
	env := newChainEnv(t, 5)
	start, err := env.space.FromRows(Shape{2, 2}, [][]int64{{3}, {0}, {1}, {4}})
	require.NoError(t, err)
	sampler, err := NewSampler(&SamplerConfig{Env: env, Policy: firstLegalPolicy{}})
	require.NoError(t, err)

	backward, err := sampler.SampleBackward(start)
	require.NoError(t, err)
	assert.True(t, backward.IsBackward())
	assert.Equal(t, 4, backward.NTrajectories())
	assert.Equal(t, 4, backward.MaxLength())
	assert.Equal(t, []int64{3, 0, 1, 4}, backward.WhenIsDone().Data())
	assert.True(t, AllTrue(backward.LastStates().IsInitialState()))
	assert.Equal(t, "[3]-> [2]-> [1]-> [0]\n[0]\n[1]-> [0]\n[4]-> [3]-> [2]-> [1]-> [0]\n", backward.Render())

	// trajectory 1 starts done, every action slot is padding
	column, err := backward.Actions().Index(All(), At(1))
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, -1, -1, -1}, column.Data())
}

func TestSamplerRandomPolicy(t *testing.T) {
	env := newChainEnv(t, 6)
	sampler, err := NewSampler(&SamplerConfig{Env: env, Policy: NewRandomPolicy(3)})
	require.NoError(t, err)

	trajectories, err := sampler.SampleForward(16)
	require.NoError(t, err)
	states := trajectories.States()
	n := trajectories.NTrajectories()
	for i, done := range trajectories.WhenIsDone().Data() {
		assert.GreaterOrEqual(t, done, int64(1))
		assert.Equal(t, []int64{0}, states.Row(i), "trajectories start at s0")
		for step := int(done); step <= trajectories.MaxLength(); step++ {
			assert.Equal(t, []int64{-1}, states.Row(step*n+i), "padding is sf")
		}
		for step := 0; step < int(done)-1; step++ {
			assert.Equal(t, []int64{int64(step + 1)}, states.Row((step+1)*n+i))
		}
	}
}

func TestSamplerMaxLength(t *testing.T) {
	env := newChainEnv(t, 10)
	sampler, err := NewSampler(&SamplerConfig{Env: env, Policy: stopPolicy{stops: []int64{8}}, MaxLength: 3})
	require.NoError(t, err)
	_, err = sampler.SampleForward(1)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewSampler(&SamplerConfig{Env: env})
	assert.ErrorAs(t, err, &cfgErr)
	_, err = NewSampler(&SamplerConfig{Env: env, Policy: firstLegalPolicy{}, MaxLength: -1})
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSamplerPropagatesInvalidActions(t *testing.T) {
	env := newChainEnv(t, 3)
	// the policy ignores the masks and walks off the chain
	sampler, err := NewSampler(&SamplerConfig{Env: env, Policy: stopPolicy{stops: []int64{5}}})
	require.NoError(t, err)
	_, err = sampler.SampleForward(1)
	var invalid *NonValidActionsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, [][]int{{0}}, invalid.Positions)
}

func TestRandomPolicy(t *testing.T) {
	env := newChainEnv(t, 3)
	states, err := env.space.FromRows(Shape{3}, [][]int64{{0}, {2}, {-1}})
	require.NoError(t, err)
	policy := NewRandomPolicy(11)
	for i := 0; i < 20; i++ {
		actions, err := policy.NextActions(states, env.ForwardMasks(states))
		require.NoError(t, err)
		assert.Equal(t, Shape{3}, actions.Shape())
		assert.NoError(t, ValidateActions(states, actions, env.ForwardMasks(states), false))
	}

	// sf has no backward action
	_, err = policy.NextActions(states, env.BackwardMasks(states))
	assert.ErrorIs(t, err, ErrNoLegalAction)
}
