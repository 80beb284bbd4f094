package policies

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeu5/qlearning-nav/types"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type ParallelConfig struct {
	Workers  int
	Episodes int // in total, split among the workers
	Horizon  int
	Seed     uint64 // worker i draws from Seed+i
	Alpha    float64
	Gamma    float64
}

func (c ParallelConfig) validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive (got %d)", types.ErrInvalidConfig, c.Workers)
	}
	if c.Episodes < c.Workers {
		return fmt.Errorf("%w: %d episodes for %d workers", types.ErrInvalidConfig, c.Episodes, c.Workers)
	}
	return nil
}

// TrainParallel runs one agent per worker, every agent with its own random
// stream and learner, all updating the same table. The returned QLearning
// reads the shared table.
func TrainParallel(ctx context.Context, env types.Environment, config ParallelConfig) (*QLearning, *types.RunStats, error) {
	if err := config.validate(); err != nil {
		return nil, nil, err
	}
	if env == nil || env.NumStates() <= 0 {
		return nil, nil, fmt.Errorf("%w: empty environment", types.ErrInvalidConfig)
	}

	table := NewQTable(env.NumStates())
	agents := make([]*types.Agent, config.Workers)
	for i := 0; i < config.Workers; i++ {
		r := rand.New(rand.NewSource(config.Seed + uint64(i)))
		learner, err := NewQLearning(env, QLearningConfig{
			Alpha: config.Alpha,
			Gamma: config.Gamma,
			Rand:  r,
			Table: table,
		})
		if err != nil {
			return nil, nil, err
		}
		episodes := config.Episodes / config.Workers
		if i < config.Episodes%config.Workers {
			episodes += 1
		}
		agent, err := types.NewAgent(&types.AgentConfig{
			Episodes:    episodes,
			Horizon:     config.Horizon,
			Rand:        r,
			Policy:      learner,
			Environment: env,
		})
		if err != nil {
			return nil, nil, err
		}
		agents[i] = agent
	}

	start := time.Now()
	stats := &types.RunStats{}
	lock := new(sync.Mutex)
	g, gCtx := errgroup.WithContext(ctx)
	for _, agent := range agents {
		agent := agent
		g.Go(func() error {
			s, err := agent.Run(gCtx)
			lock.Lock()
			stats.Merge(s)
			lock.Unlock()
			return err
		})
	}
	err := g.Wait()
	stats.Duration = time.Since(start)

	result, qErr := NewQLearning(env, QLearningConfig{
		Alpha: config.Alpha,
		Gamma: config.Gamma,
		Rand:  rand.New(rand.NewSource(config.Seed)),
		Table: table,
	})
	if qErr != nil {
		return nil, stats, qErr
	}
	return result, stats, err
}
