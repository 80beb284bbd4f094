package types

import "errors"

// ErrInvalidConfig is wrapped by every configuration error detected at
// construction or training start
var ErrInvalidConfig = errors.New("invalid configuration")

// State of the navigation graph, indexed from 0 to NumStates()-1
type State int

// Environment is a fixed finite graph. An action is identified with the
// state it leads to, so choosing action a from s always moves to a.
type Environment interface {
	// Number of states, fixed for the lifetime of the environment
	NumStates() int
	// Reaching the goal ends an episode
	Goal() State
	// Ordered legal actions from the state. Never empty for a valid state.
	// The returned slice is shared and must not be modified.
	Actions(State) []State
	// Immediate reward of taking action a from s, 0 when none is configured
	Reward(s State, a State) int
	// Display label of the state
	Name(State) string
}
