package types

// Env describes a discrete state space and the transitions between its
// states. Implementations hold immutable configuration only, so a single Env
// can be shared by concurrent callers.
//
// Actions are integers in [0, NActions()). The last action, NActions()-1, is
// the exit action: forward it terminates a trajectory (the result is sf),
// backward it is the no-op that is only legal at s0.
type Env interface {
	Space() *StateSpace
	NActions() int
	// Reset returns a batch of s0 states, or of states drawn uniformly from
	// the state space when randomInit is set
	Reset(batchShape Shape, randomInit bool) (*States, error)
	// Step applies one action per element. Either every action is legal and a
	// new batch is returned, or a *NonValidActionsError is and nothing changes.
	Step(states *States, actions *Tensor[int64]) (*States, error)
	// BackwardStep maps every element to the state it came from under the action
	BackwardStep(states *States, actions *Tensor[int64]) (*States, error)
	// ForwardMasks flags the legal forward actions, shape batch_shape + (NActions(),)
	ForwardMasks(states *States) *Tensor[bool]
	// BackwardMasks flags the legal backward actions, shape batch_shape + (NActions(),)
	BackwardMasks(states *States) *Tensor[bool]
	// Reward is non-negative and defined on every state, including sf
	Reward(states *States) *Tensor[float64]
}

// EnumerableEnv is an Env with a finite state space laid out as a product
// of per-coordinate ranges.
type EnumerableEnv interface {
	Env
	// NStates is the cardinality of the state space, sf excluded
	NStates() int
	// GridShape has one dimension per state coordinate
	GridShape() Shape
	// StateAt returns the flattened state at the given grid coordinates
	StateAt(coords []int) []int64
	// GetStatesIndices maps states to [0, NStates()) following the row-major
	// order of GridShape. States outside the grid map to -1.
	GetStatesIndices(states *States) *Tensor[int64]
}

// ExitAction is the terminating (forward) or no-op (backward) action of env
func ExitAction(env Env) int64 {
	return int64(env.NActions() - 1)
}

// ValidateActions checks one action per element of states against the
// legality masks, which have shape batch_shape + (n_actions,). Actions
// outside [0, n_actions) are illegal.
func ValidateActions(states *States, actions *Tensor[int64], masks *Tensor[bool], backward bool) error {
	batchShape := states.BatchShape()
	if !actions.shape.Equal(batchShape) {
		return &ShapeMismatchError{What: "actions", Want: batchShape, Got: actions.shape}
	}
	if masks.Rank() != len(batchShape)+1 || !masks.shape[:len(batchShape)].Equal(batchShape) {
		return &ShapeMismatchError{What: "action masks", Want: batchShape, Got: masks.shape}
	}
	nActions := masks.shape[len(batchShape)]
	var invalid [][]int
	for i, a := range actions.data {
		if a < 0 || a >= int64(nActions) || !masks.data[i*nActions+int(a)] {
			invalid = append(invalid, batchShape.unravel(i))
		}
	}
	if len(invalid) > 0 {
		return &NonValidActionsError{Positions: invalid, Backward: backward}
	}
	return nil
}
