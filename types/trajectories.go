package types

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ActionPadding fills the action slots after a trajectory is done
const ActionPadding int64 = -1

// Trajectories is a batch of complete forward trajectories (s0 to sf) or
// backward trajectories (any state to s0), stored time-major.
//
// states has batch shape (max_length+1, n): states[t, i] is the state of
// trajectory i after t actions. actions has shape (max_length, n).
// Trajectory i is done after whenIsDone[i] actions; from then on its column
// holds the terminal marker (sf forward, s0 backward).
type Trajectories struct {
	env           Env
	nTrajectories int
	states        *States
	actions       *Tensor[int64]
	whenIsDone    *Tensor[int64]
	lastStates    *States
	isBackward    bool
}

// NewTrajectories validates the shapes and the termination bookkeeping of a
// batch and copies its parts.
func NewTrajectories(env Env, states *States, actions *Tensor[int64], whenIsDone *Tensor[int64], lastStates *States, isBackward bool) (*Trajectories, error) {
	batch := states.BatchShape()
	if len(batch) != 2 || batch[0] < 1 {
		return nil, configErrorf("trajectory states need a (max_length+1, n_trajectories) batch shape, got %v", batch)
	}
	maxLength, n := batch[0]-1, batch[1]
	if !actions.shape.Equal(Shape{maxLength, n}) {
		return nil, &ShapeMismatchError{What: "trajectory actions", Want: Shape{maxLength, n}, Got: actions.shape}
	}
	if !whenIsDone.shape.Equal(Shape{n}) {
		return nil, &ShapeMismatchError{What: "when_is_done", Want: Shape{n}, Got: whenIsDone.shape}
	}
	if !lastStates.BatchShape().Equal(Shape{n}) {
		return nil, &ShapeMismatchError{What: "last states", Want: Shape{n}, Got: lastStates.BatchShape()}
	}
	if !lastStates.StateShape().Equal(states.StateShape()) {
		return nil, &ShapeMismatchError{What: "last states", Want: states.StateShape(), Got: lastStates.StateShape()}
	}

	marker := states.space.sf
	if isBackward {
		marker = states.space.s0
	}
	for i := 0; i < n; i++ {
		done := whenIsDone.data[i]
		if done < 0 || done > int64(maxLength) {
			return nil, configErrorf("trajectory %d: when_is_done %d outside [0, %d]", i, done, maxLength)
		}
		if done > 0 && equalRow(states.row(int(done-1)*n+i), marker.data) {
			return nil, configErrorf("trajectory %d: already at the terminal marker after %d actions, when_is_done is %d", i, done-1, done)
		}
		for t := int(done); t <= maxLength; t++ {
			if !equalRow(states.row(t*n+i), marker.data) {
				return nil, configErrorf("trajectory %d: state %s at step %d, expected terminal marker %s", i, formatRow(states.row(t*n+i)), t, formatRow(marker.data))
			}
		}
		if !equalRow(lastStates.row(i), marker.data) {
			return nil, configErrorf("trajectory %d: last state %s is not the terminal marker", i, formatRow(lastStates.row(i)))
		}
	}

	return &Trajectories{
		env:           env,
		nTrajectories: n,
		states:        states.Clone(),
		actions:       actions.Clone(),
		whenIsDone:    whenIsDone.Clone(),
		lastStates:    lastStates.Clone(),
		isBackward:    isBackward,
	}, nil
}

func (t *Trajectories) Env() Env {
	return t.env
}

func (t *Trajectories) NTrajectories() int {
	return t.nTrajectories
}

// MaxLength is the number of action slots of every trajectory
func (t *Trajectories) MaxLength() int {
	return t.actions.shape[0]
}

func (t *Trajectories) IsBackward() bool {
	return t.isBackward
}

// States returns a copy of the time-major states, batch shape (max_length+1, n)
func (t *Trajectories) States() *States {
	return t.states.Clone()
}

// Actions returns a copy of the time-major actions, shape (max_length, n)
func (t *Trajectories) Actions() *Tensor[int64] {
	return t.actions.Clone()
}

func (t *Trajectories) WhenIsDone() *Tensor[int64] {
	return t.whenIsDone.Clone()
}

func (t *Trajectories) LastStates() *States {
	return t.lastStates.Clone()
}

// Rewards is nil for backward trajectories. Otherwise it is the reward of the
// last states, recomputed on every call.
func (t *Trajectories) Rewards() *Tensor[float64] {
	if t.isBackward {
		return nil
	}
	return t.env.Reward(t.lastStates)
}

// TerminatingStates returns, for forward trajectories, the state each
// trajectory was in when it took the exit action. It is nil for backward
// trajectories.
func (t *Trajectories) TerminatingStates() *States {
	if t.isBackward {
		return nil
	}
	rows := make([][]int64, t.nTrajectories)
	for i := range rows {
		step := int(t.whenIsDone.data[i]) - 1
		if step < 0 {
			step = 0
		}
		rows[i] = t.states.Row(step*t.nTrajectories + i)
	}
	terminating, _ := t.states.space.FromRows(Shape{t.nTrajectories}, rows)
	return terminating
}

// Sample draws n trajectories uniformly without replacement. The result
// shares no storage with t. src may be nil to use the global source.
func (t *Trajectories) Sample(n int, src rand.Source) (*Trajectories, error) {
	if n < 0 || n > t.nTrajectories {
		return nil, configErrorf("cannot sample %d trajectories out of %d", n, t.nTrajectories)
	}
	indices := make([]int, n)
	if n > 0 {
		sampleuv.WithoutReplacement(indices, t.nTrajectories, src)
	}

	states, err := t.states.Index(All(), Take(indices...))
	if err != nil {
		return nil, err
	}
	actions, err := t.actions.Index(All(), Take(indices...))
	if err != nil {
		return nil, err
	}
	whenIsDone, err := t.whenIsDone.Index(Take(indices...))
	if err != nil {
		return nil, err
	}
	lastStates, err := t.lastStates.Index(Take(indices...))
	if err != nil {
		return nil, err
	}
	return &Trajectories{
		env:           t.env,
		nTrajectories: n,
		states:        states,
		actions:       actions,
		whenIsDone:    whenIsDone,
		lastStates:    lastStates,
		isBackward:    t.isBackward,
	}, nil
}

// Render lists every trajectory on its own line, stopping at the first
// terminal marker so the padding is not shown.
func (t *Trajectories) Render() string {
	marker := t.states.space.sf
	if t.isBackward {
		marker = t.states.space.s0
	}
	var b strings.Builder
	steps := t.MaxLength() + 1
	for i := 0; i < t.nTrajectories; i++ {
		parts := make([]string, 0)
		for s := 0; s < steps; s++ {
			row := t.states.row(s*t.nTrajectories + i)
			parts = append(parts, formatRow(row))
			if equalRow(row, marker.data) {
				break
			}
		}
		b.WriteString(strings.Join(parts, "-> "))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Trajectories) String() string {
	transposed := Zeros[int64](Shape{t.nTrajectories, t.MaxLength()})
	for s := 0; s < t.MaxLength(); s++ {
		for i := 0; i < t.nTrajectories; i++ {
			transposed.data[i*t.MaxLength()+s] = t.actions.data[s*t.nTrajectories+i]
		}
	}
	rewards := "none"
	if r := t.Rewards(); r != nil {
		rewards = r.String()
	}
	return fmt.Sprintf("Trajectories(n_trajectories=%d, states=\n%s, actions=\n%v, when_is_done=%v, rewards=%s)",
		t.nTrajectories, t.Render(), transposed, t.whenIsDone, rewards)
}
