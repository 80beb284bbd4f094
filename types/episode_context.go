package types

import "time"

// EpisodeContext carries the input and the outcome of a single episode
type EpisodeContext struct {
	Episode int
	Start   State
	Trace   *Trace

	Timesteps   int
	ReachedGoal bool
	HorizonEnd  bool // aborted after reaching the horizon

	RunDuration time.Duration
}

func NewEpisodeContext(episode int, start State) *EpisodeContext {
	return &EpisodeContext{
		Episode: episode,
		Start:   start,
		Trace:   NewTrace(),
	}
}
