package types

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is wrapped by indexing errors that address
// positions outside of a dimension.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrNoLegalAction is returned by policies for states without legal actions
var ErrNoLegalAction = errors.New("no legal action")

// NonValidActionsError is returned by Step and BackwardStep when at least one
// action of the batch is not legal from its state. Nothing is stepped when it
// is returned, so callers can retry with corrected actions.
type NonValidActionsError struct {
	// Batch coordinates of the offending elements, in row-major order
	Positions [][]int
	Backward  bool
}

func (e *NonValidActionsError) Error() string {
	direction := "forward"
	if e.Backward {
		direction = "backward"
	}
	return fmt.Sprintf("non valid %s actions at batch positions %v", direction, e.Positions)
}

// ShapeMismatchError signals structurally inconsistent tensors or batches.
type ShapeMismatchError struct {
	What string
	Want Shape
	Got  Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape mismatch, want %v got %v", e.What, e.Want, e.Got)
}

// ConfigurationError signals invalid construction parameters.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// MassConservationError is returned by CheckGrid when the full and the
// flattened enumeration of a state space disagree.
type MassConservationError struct {
	GridSum float64
	FlatSum float64
	Reason  string
}

func (e *MassConservationError) Error() string {
	return fmt.Sprintf("grid validation failed: %s (grid sum %v, flat sum %v)", e.Reason, e.GridSum, e.FlatSum)
}
