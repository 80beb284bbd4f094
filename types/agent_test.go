package types

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
)

// line of n states where every state moves to the next one, the last
// being the goal
type lineEnv struct {
	n int
}

func (l *lineEnv) NumStates() int { return l.n }
func (l *lineEnv) Goal() State    { return State(l.n - 1) }
func (l *lineEnv) Actions(s State) []State {
	if s == l.Goal() {
		return []State{s}
	}
	return []State{s + 1}
}
func (l *lineEnv) Reward(s, a State) int {
	if a == l.Goal() && s != a {
		return 1
	}
	return 0
}
func (l *lineEnv) Name(s State) string { return string(rune('A' + int(s))) }

// loopEnv never reaches its goal
type loopEnv struct{}

func (loopEnv) NumStates() int          { return 3 }
func (loopEnv) Goal() State             { return 2 }
func (loopEnv) Actions(s State) []State { return []State{1 - s%2} }
func (loopEnv) Reward(_, _ State) int   { return 0 }
func (loopEnv) Name(s State) string     { return string(rune('A' + int(s))) }

type firstActionPolicy struct {
	updates  int
	episodes int
	resets   int
}

func (p *firstActionPolicy) NextAction(_ int, _ State, actions []State) (State, bool) {
	return actions[0], true
}
func (p *firstActionPolicy) Update(_ int, _, _, _ State)     { p.updates += 1 }
func (p *firstActionPolicy) UpdateIteration(_ int, _ *Trace) { p.episodes += 1 }
func (p *firstActionPolicy) Reset()                          { p.resets += 1 }
func (p *firstActionPolicy) Record(filePath string) error {
	return os.WriteFile(filePath, []byte("{}"), 0o644)
}

func newAgent(t *testing.T, env Environment, policy Policy, episodes, horizon int) *Agent {
	t.Helper()
	agent, err := NewAgent(&AgentConfig{
		Episodes:    episodes,
		Horizon:     horizon,
		Rand:        rand.New(rand.NewSource(1)),
		Policy:      policy,
		Environment: env,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return agent
}

func TestAgentConfigValidation(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	env := &lineEnv{n: 3}
	policy := &firstActionPolicy{}
	for name, cfg := range map[string]*AgentConfig{
		"no episodes":      {Episodes: 0, Rand: r, Policy: policy, Environment: env},
		"negative horizon": {Episodes: 1, Horizon: -1, Rand: r, Policy: policy, Environment: env},
		"no rand":          {Episodes: 1, Policy: policy, Environment: env},
		"no policy":        {Episodes: 1, Rand: r, Environment: env},
		"no environment":   {Episodes: 1, Rand: r, Policy: policy},
		"empty env":        {Episodes: 1, Rand: r, Policy: policy, Environment: &lineEnv{n: 0}},
	} {
		if _, err := NewAgent(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestRunEpisode(t *testing.T) {
	policy := &firstActionPolicy{}
	agent := newAgent(t, &lineEnv{n: 4}, policy, 1, 0)

	eCtx := NewEpisodeContext(0, 0)
	agent.RunEpisode(eCtx)
	if !eCtx.ReachedGoal || eCtx.Timesteps != 3 || eCtx.Trace.Len() != 3 {
		t.Errorf("expected 3 steps to the goal, got %+v", eCtx)
	}
	if policy.updates != 3 || policy.episodes != 1 {
		t.Errorf("expected 3 updates and 1 episode, got %d and %d", policy.updates, policy.episodes)
	}
	if eCtx.Trace.Return() != 1 {
		t.Errorf("expected a return of 1, got %d", eCtx.Trace.Return())
	}
	state, action, next, reward, ok := eCtx.Trace.Last()
	if !ok || state != 2 || action != 3 || next != 3 || reward != 1 {
		t.Errorf("unexpected last step %d %d %d %d", state, action, next, reward)
	}

	// starting at the goal does nothing
	eCtx = NewEpisodeContext(1, 3)
	agent.RunEpisode(eCtx)
	if !eCtx.ReachedGoal || eCtx.Timesteps != 0 || policy.updates != 3 {
		t.Errorf("expected an empty episode, got %+v", eCtx)
	}
}

func TestHorizon(t *testing.T) {
	policy := &firstActionPolicy{}
	agent := newAgent(t, loopEnv{}, policy, 10, 5)

	eCtx := NewEpisodeContext(0, 0)
	agent.RunEpisode(eCtx)
	if !eCtx.HorizonEnd || eCtx.ReachedGoal || eCtx.Timesteps != 5 {
		t.Errorf("expected an aborted episode of 5 steps, got %+v", eCtx)
	}

	stats, err := agent.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Episodes != 10 || stats.GoalReached+stats.HorizonAborted != 10 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestRunCancelled(t *testing.T) {
	agent := newAgent(t, &lineEnv{n: 3}, &firstActionPolicy{}, 100, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := agent.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if stats.Episodes != 0 {
		t.Errorf("expected no episodes, got %d", stats.Episodes)
	}
}

func TestRunStatsMerge(t *testing.T) {
	s := &RunStats{Episodes: 2, Timesteps: 5, GoalReached: 2, Duration: 3}
	s.Merge(&RunStats{Episodes: 3, Timesteps: 7, GoalReached: 2, HorizonAborted: 1, Duration: 10})
	if s.Episodes != 5 || s.Timesteps != 12 || s.GoalReached != 4 || s.HorizonAborted != 1 || s.Duration != 10 {
		t.Errorf("unexpected merge %+v", s)
	}
}

func TestComparisonRun(t *testing.T) {
	dir := t.TempDir()
	c, err := NewComparison(&ComparisonConfig{
		Runs:         2,
		Episodes:     20,
		Seed:         1,
		RecordPath:   dir,
		RecordTraces: true,
		RecordPolicy: true,
		Output:       io.Discard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lengths := make([][]DataSet, 0)
	c.AddAnalysis("Length", EpisodeLengthAnalyzer(), func(_ int, _ int, names []string, ds []DataSet) error {
		if len(names) != 2 {
			t.Errorf("expected 2 experiments, got %v", names)
		}
		lengths = append(lengths, ds)
		return nil
	})
	c.AddAnalysis("Coverage", NewCoverageAnalyzer(), JSONComparator(dir, "coverage"))

	first, second := &firstActionPolicy{}, &firstActionPolicy{}
	c.AddExperiment(NewExperiment("first", first, &lineEnv{n: 4}))
	c.AddExperiment(NewExperiment("second", second, &lineEnv{n: 4}))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(lengths) != 2 {
		t.Fatalf("expected the comparator to run once per run, got %d", len(lengths))
	}
	series, ok := lengths[0][0].([]float64)
	if !ok || len(series) != 20 {
		t.Errorf("expected 20 episode lengths, got %v", lengths[0][0])
	}
	for _, v := range series {
		if v < 0 || v > 3 {
			t.Errorf("episode length %v out of range", v)
		}
	}
	if first.resets != 2 || first.episodes != 40 {
		t.Errorf("expected 2 resets and 40 episodes, got %d and %d", first.resets, first.episodes)
	}

	for _, f := range []string{
		"comparison_config.json",
		"0_coverage.json",
		"1_coverage.json",
		filepath.Join("traces", "first_0.jsonl"),
		filepath.Join("policies", "second_1.json"),
	} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s to be written: %v", f, err)
		}
	}
}

func TestVisitGraph(t *testing.T) {
	v := NewVisitGraph()
	if !v.Update(0, 1, 1) {
		t.Errorf("expected a new pair")
	}
	if v.Update(0, 1, 1) {
		t.Errorf("expected a known pair")
	}
	v.Update(1, 2, 2)
	if v.Pairs() != 2 {
		t.Errorf("expected 2 pairs, got %d", v.Pairs())
	}
	if v.GetVisits()[0] != 2 {
		t.Errorf("expected 2 visits of 0, got %d", v.GetVisits()[0])
	}
}

func TestTraceRecord(t *testing.T) {
	trace := NewTrace()
	trace.Append(0, 0, 1, 1, 0)
	trace.Append(1, 1, 2, 2, 5)
	filePath := filepath.Join(t.TempDir(), "traces", "trace.json")
	if err := trace.Record(filePath); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	bs, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	steps := make([]traceStep, 0)
	if err := json.Unmarshal(bs, &steps); err != nil {
		t.Fatalf("invalid trace %s: %v", bs, err)
	}
	if len(steps) != 2 || steps[1] != (traceStep{State: 1, Action: 2, NextState: 2, Reward: 5}) {
		t.Errorf("unexpected trace %+v", steps)
	}
}

func TestDuplicateExperiment(t *testing.T) {
	c, err := NewComparison(&ComparisonConfig{
		Runs:       1,
		Episodes:   1,
		RecordPath: t.TempDir(),
		Output:     io.Discard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddExperiment(NewExperiment("same", &firstActionPolicy{}, &lineEnv{n: 2})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddExperiment(NewExperiment("same", &firstActionPolicy{}, &lineEnv{n: 2})); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for a duplicate name, got %v", err)
	}
	if len(c.Experiments) != 1 {
		t.Errorf("expected one experiment, got %d", len(c.Experiments))
	}
}

func TestExperimentWarnsOnHorizon(t *testing.T) {
	buf := new(bytes.Buffer)
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	c, err := NewComparison(&ComparisonConfig{
		Runs:       1,
		Episodes:   30,
		Horizon:    4,
		Seed:       1,
		RecordPath: t.TempDir(),
		Output:     io.Discard,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.AddExperiment(NewExperiment("loop", &firstActionPolicy{}, loopEnv{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "warning:") || !strings.Contains(buf.String(), "aborted at horizon 4") {
		t.Errorf("expected a horizon warning, got %q", buf.String())
	}
}
