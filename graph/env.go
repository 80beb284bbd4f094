package graph

import (
	"fmt"

	"github.com/zeu5/qlearning-nav/types"
)

type edge struct {
	to     types.State
	reward int
}

// Graph is an immutable navigation environment. Every state keeps its
// ordered list of outgoing edges with the reward of taking them.
type Graph struct {
	names   []string
	index   map[string]types.State
	goal    types.State
	edges   [][]edge
	actions [][]types.State
}

var _ types.Environment = &Graph{}

// New validates the config and builds the graph
func New(cfg *Config) (*Graph, error) {
	if cfg == nil || len(cfg.States) == 0 {
		return nil, fmt.Errorf("%w: no states", types.ErrInvalidConfig)
	}

	g := &Graph{
		names:   make([]string, len(cfg.States)),
		index:   make(map[string]types.State, len(cfg.States)),
		edges:   make([][]edge, len(cfg.States)),
		actions: make([][]types.State, len(cfg.States)),
	}
	for i, name := range cfg.States {
		if name == "" {
			return nil, fmt.Errorf("%w: state %d has no name", types.ErrInvalidConfig, i)
		}
		if _, ok := g.index[name]; ok {
			return nil, fmt.Errorf("%w: duplicate state %q", types.ErrInvalidConfig, name)
		}
		g.names[i] = name
		g.index[name] = types.State(i)
	}

	goal, ok := g.index[cfg.Goal]
	if !ok {
		return nil, fmt.Errorf("%w: unknown goal state %q", types.ErrInvalidConfig, cfg.Goal)
	}
	g.goal = goal

	for from := range cfg.Transitions {
		if _, ok := g.index[from]; !ok {
			return nil, fmt.Errorf("%w: transitions from unknown state %q", types.ErrInvalidConfig, from)
		}
	}

	for i, name := range g.names {
		targets := cfg.Transitions[name]
		if len(targets) == 0 {
			if types.State(i) != goal {
				return nil, fmt.Errorf("%w: state %q has no transitions", types.ErrInvalidConfig, name)
			}
			// the goal only loops on itself
			targets = []string{name}
		}
		seen := make(map[types.State]bool, len(targets))
		for _, target := range targets {
			to, ok := g.index[target]
			if !ok {
				return nil, fmt.Errorf("%w: transition %s->%s leads to an unknown state", types.ErrInvalidConfig, name, target)
			}
			if seen[to] {
				return nil, fmt.Errorf("%w: duplicate transition %s->%s", types.ErrInvalidConfig, name, target)
			}
			seen[to] = true
			g.edges[i] = append(g.edges[i], edge{to: to})
			g.actions[i] = append(g.actions[i], to)
		}
	}

	for _, r := range cfg.Rewards {
		from, ok := g.index[r.From]
		if !ok {
			return nil, fmt.Errorf("%w: reward from unknown state %q", types.ErrInvalidConfig, r.From)
		}
		to, ok := g.index[r.To]
		if !ok {
			return nil, fmt.Errorf("%w: reward to unknown state %q", types.ErrInvalidConfig, r.To)
		}
		found := false
		for j := range g.edges[from] {
			if g.edges[from][j].to == to {
				g.edges[from][j].reward = r.Reward
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: reward on %s->%s which is not a transition", types.ErrInvalidConfig, r.From, r.To)
		}
	}
	return g, nil
}

func (g *Graph) NumStates() int {
	return len(g.names)
}

func (g *Graph) Goal() types.State {
	return g.goal
}

func (g *Graph) valid(s types.State) bool {
	return s >= 0 && int(s) < len(g.names)
}

func (g *Graph) Actions(s types.State) []types.State {
	if !g.valid(s) {
		return nil
	}
	return g.actions[s]
}

func (g *Graph) Reward(s, a types.State) int {
	if !g.valid(s) {
		return 0
	}
	for _, e := range g.edges[s] {
		if e.to == a {
			return e.reward
		}
	}
	return 0
}

func (g *Graph) Name(s types.State) string {
	if !g.valid(s) {
		return fmt.Sprintf("?%d", int(s))
	}
	return g.names[s]
}

// State looks up a state by name
func (g *Graph) State(name string) (types.State, bool) {
	s, ok := g.index[name]
	return s, ok
}

func (g *Graph) States() []types.State {
	states := make([]types.State, len(g.names))
	for i := range states {
		states[i] = types.State(i)
	}
	return states
}

// Distances returns the number of hops from every state to the goal,
// -1 for the states that cannot reach it
func (g *Graph) Distances() []int {
	reverse := make([][]types.State, len(g.names))
	for from, targets := range g.actions {
		for _, to := range targets {
			reverse[to] = append(reverse[to], types.State(from))
		}
	}

	dist := make([]int, len(g.names))
	for i := range dist {
		dist[i] = -1
	}
	dist[g.goal] = 0
	queue := []types.State{g.goal}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, prev := range reverse[cur] {
			if dist[prev] == -1 {
				dist[prev] = dist[cur] + 1
				queue = append(queue, prev)
			}
		}
	}
	return dist
}

// OptimalActions returns the legal actions from s lying on a shortest path
// to the goal. The goal keeps its own actions.
func (g *Graph) OptimalActions(s types.State) []types.State {
	if !g.valid(s) {
		return nil
	}
	if s == g.goal {
		return g.actions[s]
	}
	return g.optimalFrom(s, g.Distances())
}

func (g *Graph) optimalFrom(s types.State, dist []int) []types.State {
	if dist[s] <= 0 {
		return nil
	}
	optimal := make([]types.State, 0)
	for _, a := range g.actions[s] {
		if dist[a] == dist[s]-1 {
			optimal = append(optimal, a)
		}
	}
	return optimal
}

// Unreachable lists the states from which the goal cannot be reached
func (g *Graph) Unreachable() []types.State {
	unreachable := make([]types.State, 0)
	for s, d := range g.Distances() {
		if d == -1 {
			unreachable = append(unreachable, types.State(s))
		}
	}
	return unreachable
}
