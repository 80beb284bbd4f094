package types

import (
	"encoding/json"

	"github.com/zeu5/qlearning-nav/util"
)

// Trace of an episode as (state, action, nextState, reward) steps
type Trace struct {
	states     []State
	actions    []State
	nextStates []State
	rewards    []int
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]State, 0),
		nextStates: make([]State, 0),
		rewards:    make([]int, 0),
	}
}

func (t *Trace) Append(step int, state, action, nextState State, reward int) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.nextStates = append(t.nextStates, nextState)
	t.rewards = append(t.rewards, reward)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, State, State, int, bool) {
	if i < 0 || i >= len(t.states) {
		return 0, 0, 0, 0, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], t.rewards[i], true
}

func (t *Trace) Last() (State, State, State, int, bool) {
	return t.Get(len(t.states) - 1)
}

// Return is the undiscounted sum of the rewards collected in the trace
func (t *Trace) Return() int {
	total := 0
	for _, r := range t.rewards {
		total += r
	}
	return total
}

type traceStep struct {
	State     State `json:"state"`
	Action    State `json:"action"`
	NextState State `json:"next_state"`
	Reward    int   `json:"reward"`
}

func (t *Trace) MarshalJSON() ([]byte, error) {
	steps := make([]traceStep, t.Len())
	for i := range steps {
		steps[i] = traceStep{
			State:     t.states[i],
			Action:    t.actions[i],
			NextState: t.nextStates[i],
			Reward:    t.rewards[i],
		}
	}
	return json.Marshal(steps)
}

// Record writes the trace as a JSON list of steps
func (t *Trace) Record(filePath string) error {
	return util.WriteJSON(filePath, t)
}
