package types

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

// Policy picks one action per batch element among the legal ones
type Policy interface {
	// masks has shape batch_shape + (n_actions,), the result batch_shape
	NextActions(states *States, masks *Tensor[bool]) (*Tensor[int64], error)
}

// LegalActions lists the true entries of the action masks of every batch
// element, in row-major batch order.
func LegalActions(states *States, masks *Tensor[bool]) ([][]int64, error) {
	batchShape := states.BatchShape()
	if masks.Rank() != len(batchShape)+1 || !masks.shape[:len(batchShape)].Equal(batchShape) {
		return nil, &ShapeMismatchError{What: "action masks", Want: batchShape, Got: masks.shape}
	}
	nActions := masks.shape[len(batchShape)]
	legal := make([][]int64, batchShape.Numel())
	for i := range legal {
		legal[i] = make([]int64, 0, nActions)
		for a := 0; a < nActions; a++ {
			if masks.data[i*nActions+a] {
				legal[i] = append(legal[i], int64(a))
			}
		}
		if len(legal[i]) == 0 {
			return nil, fmt.Errorf("%w: batch position %v", ErrNoLegalAction, batchShape.unravel(i))
		}
	}
	return legal, nil
}

// RandomPolicy picks uniformly among the legal actions
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

// NewRandomPolicy seeds the policy, a zero seed uses the current time
func NewRandomPolicy(seed uint64) *RandomPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) NextActions(states *States, masks *Tensor[bool]) (*Tensor[int64], error) {
	legal, err := LegalActions(states, masks)
	if err != nil {
		return nil, err
	}
	actions := Zeros[int64](states.BatchShape())
	for i, l := range legal {
		actions.data[i] = l[r.rand.Intn(len(l))]
	}
	return actions, nil
}
