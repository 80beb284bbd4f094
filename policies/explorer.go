package policies

import (
	"math"

	"github.com/zeu5/qlearning-nav/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Explorer is the behaviour policy picking the action taken while learning
type Explorer interface {
	Choose(q *QTable, state types.State, actions []types.State) (types.State, bool)
}

// UniformExplorer picks any legal action with the same probability
type UniformExplorer struct {
	rand *rand.Rand
}

var _ Explorer = &UniformExplorer{}

func NewUniformExplorer(r *rand.Rand) *UniformExplorer {
	return &UniformExplorer{rand: r}
}

func (u *UniformExplorer) Choose(_ *QTable, _ types.State, actions []types.State) (types.State, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	return actions[u.rand.Intn(len(actions))], true
}

// SoftMaxExplorer samples the actions with probability proportional to
// exp(Q(s,a)/temperature)
type SoftMaxExplorer struct {
	temperature float64
	rand        rand.Source
}

var _ Explorer = &SoftMaxExplorer{}

func NewSoftMaxExplorer(temperature float64, src rand.Source) *SoftMaxExplorer {
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxExplorer{
		temperature: temperature,
		rand:        src,
	}
}

func (s *SoftMaxExplorer) Choose(q *QTable, state types.State, actions []types.State) (types.State, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	vals := make([]float64, len(actions))
	max := math.Inf(-1)
	for i, action := range actions {
		vals[i] = q.Get(state, action) / s.temperature
		if vals[i] > max {
			max = vals[i]
		}
	}
	sum := float64(0)
	for i, val := range vals {
		exp := math.Exp(val - max)
		vals[i] = exp
		sum += exp
	}
	for i, v := range vals {
		vals[i] = v / sum
	}
	i, ok := sampleuv.NewWeighted(vals, s.rand).Take()
	if !ok {
		return 0, false
	}
	return actions[i], true
}
