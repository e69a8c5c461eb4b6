package policies

import (
	"fmt"
	"math"
	"time"

	"github.com/zeu5/gfn-substrate/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxPolicy samples among the legal actions with probability
// proportional to exp(preference/temperature). Preferences are fixed per
// action id, so a high exit preference yields short trajectories.
type SoftMaxPolicy struct {
	preferences []float64
	temperature float64
	rand        rand.Source
}

var _ types.Policy = &SoftMaxPolicy{}

// NewSoftMaxPolicy takes one preference per action. A zero seed uses the
// current time.
func NewSoftMaxPolicy(preferences []float64, temperature float64, seed uint64) (*SoftMaxPolicy, error) {
	if temperature <= 0 {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("temperature must be positive, got %v", temperature)}
	}
	if len(preferences) == 0 {
		return nil, &types.ConfigurationError{Reason: "softmax policy needs at least one action preference"}
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	p := make([]float64, len(preferences))
	copy(p, preferences)
	return &SoftMaxPolicy{
		preferences: p,
		temperature: temperature,
		rand:        rand.NewSource(seed),
	}, nil
}

// NewExitBiasedPolicy prefers exiting by exitPreference over every move of
// an environment with nActions actions
func NewExitBiasedPolicy(nActions int, exitPreference float64, seed uint64) (*SoftMaxPolicy, error) {
	if nActions < 1 {
		return nil, &types.ConfigurationError{Reason: fmt.Sprintf("invalid number of actions %d", nActions)}
	}
	preferences := make([]float64, nActions)
	preferences[nActions-1] = exitPreference
	return NewSoftMaxPolicy(preferences, 1, seed)
}

// Weights returns the normalized probabilities of the given legal actions
func (s *SoftMaxPolicy) Weights(legal []int64) ([]float64, error) {
	vals := make([]float64, len(legal))
	for i, a := range legal {
		if int(a) >= len(s.preferences) {
			return nil, &types.ConfigurationError{Reason: fmt.Sprintf("no preference for action %d", a)}
		}
		vals[i] = s.preferences[a] / s.temperature
	}
	// shift by the max for numerical stability
	max := floats.Max(vals)
	for i, v := range vals {
		vals[i] = math.Exp(v - max)
	}
	floats.Scale(1/floats.Sum(vals), vals)
	return vals, nil
}

func (s *SoftMaxPolicy) NextActions(states *types.States, masks *types.Tensor[bool]) (*types.Tensor[int64], error) {
	legal, err := types.LegalActions(states, masks)
	if err != nil {
		return nil, err
	}
	actions := make([]int64, len(legal))
	for i, l := range legal {
		weights, err := s.Weights(l)
		if err != nil {
			return nil, err
		}
		j, ok := sampleuv.NewWeighted(weights, s.rand).Take()
		if !ok {
			return nil, fmt.Errorf("%w: batch element %d", types.ErrNoLegalAction, i)
		}
		actions[i] = l[j]
	}
	return types.NewTensor(states.BatchShape(), actions)
}
