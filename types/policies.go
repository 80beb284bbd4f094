package types

// Policy picks the actions of an agent and learns from the transitions
type Policy interface {
	// NextAction chooses one of the legal actions, false stops the episode
	NextAction(step int, state State, actions []State) (State, bool)
	// Update is called after every transition
	Update(step int, state State, action State, nextState State)
	// UpdateIteration is called at the end of every episode
	UpdateIteration(episode int, trace *Trace)
	// Reset forgets everything learned so far
	Reset()
}

// GreedyPolicy is a Policy that can report the action it would take
// without exploring
type GreedyPolicy interface {
	Policy
	Greedy(State) State
}
