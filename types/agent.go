package types

import "fmt"

type SamplerConfig struct {
	Env    Env
	Policy Policy
	// Upper bound on the number of actions of a trajectory, 0 for no bound
	MaxLength int
}

// Sampler rolls a policy out in an environment and collects the complete
// trajectories
type Sampler struct {
	config *SamplerConfig
	env    Env
	policy Policy
}

// Instantiates a new Sampler
func NewSampler(config *SamplerConfig) (*Sampler, error) {
	if config == nil || config.Env == nil || config.Policy == nil {
		return nil, configErrorf("sampler needs an environment and a policy")
	}
	if config.MaxLength < 0 {
		return nil, configErrorf("negative max length %d", config.MaxLength)
	}
	return &Sampler{
		config: config,
		env:    config.Env,
		policy: config.Policy,
	}, nil
}

// SampleForward rolls out n trajectories from s0 until all of them reach sf
func (s *Sampler) SampleForward(n int) (*Trajectories, error) {
	states, err := s.env.Reset(Shape{n}, false)
	if err != nil {
		return nil, err
	}
	return s.rollout(states, false)
}

// SampleBackward rolls the given states back until all of them reach s0.
// The batch is flattened first.
func (s *Sampler) SampleBackward(start *States) (*Trajectories, error) {
	return s.rollout(start.Flatten(), true)
}

func (s *Sampler) isDone(states *States, backward bool) *Tensor[bool] {
	if backward {
		return states.IsInitialState()
	}
	return states.IsSinkState()
}

// rollout runs a single batched episode and returns the resulting trajectories
func (s *Sampler) rollout(states *States, backward bool) (*Trajectories, error) {
	n := states.Len()
	exit := ExitAction(s.env)

	whenIsDone := make([]int64, n)
	remaining := n
	for i, done := range s.isDone(states, backward).data {
		whenIsDone[i] = -1
		if done {
			whenIsDone[i] = 0
			remaining--
		}
	}

	snapshots := []*States{states}
	actionRows := make([]*Tensor[int64], 0)

	for step := 0; remaining > 0; step++ {
		if s.config.MaxLength > 0 && step >= s.config.MaxLength {
			return nil, configErrorf("%d trajectories not done after %d steps", remaining, s.config.MaxLength)
		}

		var masks *Tensor[bool]
		if backward {
			masks = s.env.BackwardMasks(states)
		} else {
			masks = s.env.ForwardMasks(states)
		}
		actions, err := s.policy.NextActions(states, masks)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		// done elements keep taking the absorbing action, recorded as padding
		recorded := actions.Clone()
		for i := range whenIsDone {
			if whenIsDone[i] >= 0 {
				actions.data[i] = exit
				recorded.data[i] = ActionPadding
			}
		}

		var next *States
		if backward {
			next, err = s.env.BackwardStep(states, actions)
		} else {
			next, err = s.env.Step(states, actions)
		}
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}

		for i, done := range s.isDone(next, backward).data {
			if done && whenIsDone[i] < 0 {
				whenIsDone[i] = int64(step + 1)
				remaining--
			}
		}
		states = next
		snapshots = append(snapshots, states)
		actionRows = append(actionRows, recorded)
	}

	stacked, err := StackStates(snapshots)
	if err != nil {
		return nil, err
	}
	actions := Zeros[int64](Shape{0, n})
	if len(actionRows) > 0 {
		actions, err = Stack(actionRows)
		if err != nil {
			return nil, err
		}
	}
	return NewTrajectories(s.env, stacked, actions, FromSlice(whenIsDone...), states, backward)
}
