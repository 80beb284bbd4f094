package policies

import (
	"fmt"
	"time"

	"github.com/zeu5/qlearning-nav/types"
	"golang.org/x/exp/rand"
)

const (
	DefaultAlpha    = 0.1
	DefaultGamma    = 0.9
	DefaultEpisodes = 1000
)

type QLearningConfig struct {
	// learning rate
	Alpha float64
	// discount of the value of the next state
	Gamma float64
	// behaviour policy, uniform over Rand when nil
	Explorer Explorer
	Rand     *rand.Rand
	// shared table, a fresh one when nil
	Table *QTable
}

// DefaultQLearningConfig explores uniformly with r
func DefaultQLearningConfig(r *rand.Rand) QLearningConfig {
	return QLearningConfig{
		Alpha: DefaultAlpha,
		Gamma: DefaultGamma,
		Rand:  r,
	}
}

func (c QLearningConfig) validate() error {
	if c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in [0, 1] (got %v)", types.ErrInvalidConfig, c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("%w: gamma must be in [0, 1] (got %v)", types.ErrInvalidConfig, c.Gamma)
	}
	return nil
}

// QLearning learns Q(s,a) += alpha * (R(s,a) + gamma * max Q(s') - Q(s,a))
// while the explorer drives the episodes
type QLearning struct {
	qTable      *QTable
	alpha       float64
	gamma       float64
	explorer    Explorer
	environment types.Environment
}

var _ types.GreedyPolicy = &QLearning{}

func NewQLearning(env types.Environment, config QLearningConfig) (*QLearning, error) {
	if env == nil || env.NumStates() <= 0 {
		return nil, fmt.Errorf("%w: empty environment", types.ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	table := config.Table
	if table == nil {
		table = NewQTable(env.NumStates())
	} else if table.Size() != env.NumStates() {
		return nil, fmt.Errorf("%w: table of size %d for %d states", types.ErrInvalidConfig, table.Size(), env.NumStates())
	}
	explorer := config.Explorer
	if explorer == nil {
		r := config.Rand
		if r == nil {
			r = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
		}
		explorer = NewUniformExplorer(r)
	}
	return &QLearning{
		qTable:      table,
		alpha:       config.Alpha,
		gamma:       config.Gamma,
		explorer:    explorer,
		environment: env,
	}, nil
}

func (q *QLearning) Table() *QTable {
	return q.qTable
}

func (q *QLearning) NextAction(_ int, state types.State, actions []types.State) (types.State, bool) {
	return q.explorer.Choose(q.qTable, state, actions)
}

func (q *QLearning) Update(_ int, state, action, nextState types.State) {
	reward := float64(q.environment.Reward(state, action))
	q.qTable.Apply(state, action, nextState, q.environment.Actions(nextState), func(cur, maxNext float64) float64 {
		return cur + q.alpha*(reward+q.gamma*maxNext-cur)
	})
}

func (q *QLearning) UpdateIteration(_ int, _ *types.Trace) {}

func (q *QLearning) Reset() {
	q.qTable.Reset()
}

// Greedy returns the legal action from state with the largest value, the
// first one on ties and state itself when there is nothing to take.
// A row that was never updated is all ties, so the state moves to its first
// legal action rather than staying in place.
func (q *QLearning) Greedy(state types.State) types.State {
	return q.qTable.Best(state, q.environment.Actions(state))
}

// Policy is the greedy move of every state
func (q *QLearning) Policy() []types.State {
	policy := make([]types.State, q.environment.NumStates())
	for i := range policy {
		policy[i] = q.Greedy(types.State(i))
	}
	return policy
}

func (q *QLearning) Record(filePath string) error {
	return q.qTable.Record(filePath)
}
