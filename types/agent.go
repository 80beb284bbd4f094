package types

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/exp/rand"
)

type AgentConfig struct {
	Episodes int
	// Maximum number of steps of an episode, 0 means unbounded
	Horizon int
	// Source of the start states. Share it with the policy to drive the
	// whole run from a single stream.
	Rand        *rand.Rand
	Policy      Policy
	Environment Environment
}

func (c *AgentConfig) validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive (got %d)", ErrInvalidConfig, c.Episodes)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: horizon cannot be negative (got %d)", ErrInvalidConfig, c.Horizon)
	}
	if c.Rand == nil {
		return fmt.Errorf("%w: no random source", ErrInvalidConfig)
	}
	if c.Policy == nil {
		return fmt.Errorf("%w: no policy", ErrInvalidConfig)
	}
	if c.Environment == nil || c.Environment.NumStates() <= 0 {
		return fmt.Errorf("%w: empty environment", ErrInvalidConfig)
	}
	return nil
}

// RunStats summarizes the episodes executed by an agent
type RunStats struct {
	Episodes       int
	Timesteps      int
	GoalReached    int
	HorizonAborted int
	Duration       time.Duration
}

func (s *RunStats) add(eCtx *EpisodeContext) {
	s.Episodes += 1
	s.Timesteps += eCtx.Timesteps
	if eCtx.ReachedGoal {
		s.GoalReached += 1
	}
	if eCtx.HorizonEnd {
		s.HorizonAborted += 1
	}
}

// Merge adds up the stats of another run
func (s *RunStats) Merge(other *RunStats) {
	s.Episodes += other.Episodes
	s.Timesteps += other.Timesteps
	s.GoalReached += other.GoalReached
	s.HorizonAborted += other.HorizonAborted
	if other.Duration > s.Duration {
		s.Duration = other.Duration
	}
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
	rand        *rand.Rand
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) (*Agent, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
		rand:        config.Rand,
	}, nil
}

// SampleStart draws a start state uniformly from all the states, the goal
// included
func (a *Agent) SampleStart() State {
	return State(a.rand.Intn(a.environment.NumStates()))
}

// Run the agent for the configured number of episodes. The context is
// checked between episodes.
func (a *Agent) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
	}()

	for i := 0; i < a.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}
		eCtx := NewEpisodeContext(i, a.SampleStart())
		a.RunEpisode(eCtx)
		stats.add(eCtx)
	}
	warnHorizon(stats, a.config.Horizon)
	return stats, nil
}

func warnHorizon(stats *RunStats, horizon int) {
	if stats.HorizonAborted > 0 {
		log.Printf("warning: %d/%d episodes aborted at horizon %d", stats.HorizonAborted, stats.Episodes, horizon)
	}
}

// RunEpisode walks from eCtx.Start until the goal is reached, the horizon
// is hit or the policy gives up
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	start := time.Now()
	defer func() {
		eCtx.RunDuration = time.Since(start)
	}()

	goal := a.environment.Goal()
	state := eCtx.Start
	for step := 0; state != goal; step++ {
		if a.config.Horizon > 0 && step >= a.config.Horizon {
			eCtx.HorizonEnd = true
			break
		}
		actions := a.environment.Actions(state)
		if len(actions) == 0 {
			break
		}
		action, ok := a.policy.NextAction(step, state, actions)
		if !ok {
			break
		}
		nextState := action
		reward := a.environment.Reward(state, action)
		a.policy.Update(step, state, action, nextState)

		eCtx.Trace.Append(step, state, action, nextState, reward)
		eCtx.Timesteps += 1
		state = nextState
	}
	eCtx.ReachedGoal = state == goal
	a.policy.UpdateIteration(eCtx.Episode, eCtx.Trace)
}
