package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/zeu5/qlearning-nav/util"
	"golang.org/x/exp/rand"
)

// Recorder is implemented by policies that can save what they learned
type Recorder interface {
	Record(filePath string) error
}

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Rand       *rand.Rand
	Analyzers  []Analyzer
	Context    context.Context

	// record flags
	RecordTraces bool
	RecordPolicy bool

	ReportSavePath string
	Printer        *TerminalPrinter

	//misc
	LongestExpNameLen int
}

// Experiment encapsulates a policy trained on an environment whose episodes are analyzed
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) error {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return err
	}
	return util.AppendToFile(tracesFile, string(bs))
}

// Run the experiment for the specified number of episodes,
// handing every episode to the analyzers
func (e *Experiment) Run(rConfig *experimentRunConfig) (*RunStats, error) {
	agent, err := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Rand:        rConfig.Rand,
		Policy:      e.policy,
		Environment: e.environment,
	})
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", e.Name, err)
	}

	stats := &RunStats{}
	start := time.Now()
	printEvery := rConfig.Episodes / 100
	if printEvery == 0 {
		printEvery = 1
	}
	EPPadding := len(strconv.Itoa(rConfig.Episodes))

	for i := 0; i < rConfig.Episodes; i++ {
		select {
		case <-rConfig.Context.Done():
			return stats, rConfig.Context.Err()
		default:
		}

		eCtx := NewEpisodeContext(i, agent.SampleStart())
		agent.RunEpisode(eCtx)
		stats.add(eCtx)

		if rConfig.RecordTraces {
			if err := e.recordTrace(rConfig, eCtx.Trace); err != nil {
				return stats, fmt.Errorf("recording trace: %w", err)
			}
		}

		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, i, e.Name, eCtx, e.policy)
		}

		// terminal execution display
		if rConfig.Printer != nil && (i+1)%printEvery == 0 {
			rConfig.Printer.Print("Exp:%*s, Eps:%*d/%d, TSteps:%d, Goal:%*d, Horizon:%*d",
				rConfig.LongestExpNameLen, e.Name, EPPadding, stats.Episodes, rConfig.Episodes, stats.Timesteps,
				EPPadding, stats.GoalReached, EPPadding, stats.HorizonAborted)
		}
	}
	stats.Duration = time.Since(start)
	warnHorizon(stats, rConfig.Horizon)

	if rConfig.Printer != nil {
		rConfig.Printer.Done("Exp:%*s, Eps:%d, TSteps:%d, Goal:%d, Horizon:%d, Time:%s",
			rConfig.LongestExpNameLen, e.Name, stats.Episodes, stats.Timesteps, stats.GoalReached, stats.HorizonAborted, stats.Duration)
	}

	if rConfig.RecordPolicy {
		if r, ok := e.policy.(Recorder); ok {
			policyFile := path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".json")
			if err := r.Record(policyFile); err != nil {
				return stats, fmt.Errorf("recording policy: %w", err)
			}
		}
	}
	return stats, nil
}

// Reset forgets what the policy learned so that the next run starts fresh
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Generic Dataset that contains information after processing the episodes
type DataSet interface{}

// Analyzer compresses the information in the episodes to a DataSet
type Analyzer interface {
	// Run, episode, experiment, finished episode, policy after the episode
	Analyze(int, int, string, *EpisodeContext, Policy)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet) error

func NoopComparator() Comparator {
	return func(_, _ int, _ []string, _ []DataSet) error { return nil }
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int    // number of runs
	Episodes int    // number of episodes
	Horizon  int    // max steps per episode, 0 for unbounded
	Seed     uint64 // start states of run i are drawn from Seed+i

	RecordPath string // path to store the results

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// progress output, os.Stdout when nil
	Output io.Writer
}

func (c *ComparisonConfig) validate() error {
	if c.Runs <= 0 {
		return fmt.Errorf("%w: runs must be positive (got %d)", ErrInvalidConfig, c.Runs)
	}
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes must be positive (got %d)", ErrInvalidConfig, c.Episodes)
	}
	if c.Horizon < 0 {
		return fmt.Errorf("%w: horizon cannot be negative (got %d)", ErrInvalidConfig, c.Horizon)
	}
	if c.RecordPath == "" {
		return fmt.Errorf("%w: no record path", ErrInvalidConfig)
	}
	return nil
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig

	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["seed"] = cfg.Seed
	out["record_traces"] = cfg.RecordTraces
	out["record_policy"] = cfg.RecordPolicy

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for _, name := range c.analyzerNames {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	return util.WriteJSON(path.Join(cfg.RecordPath, "comparison_config.json"), out)
}

// Comparison contains the different experiments to compare
// The episodes of the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments   []*Experiment
	analyzerNames []string
	analyzers     map[string]Analyzer
	comparators   map[string]Comparator
	cConfig       *ComparisonConfig
	printer       *TerminalPrinter
}

// NewComparison creates a comparison instance and the folders to record into
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	foldersToCreate := []string{""}
	if config.RecordTraces {
		foldersToCreate = append(foldersToCreate, "traces")
	}
	if config.RecordPolicy {
		foldersToCreate = append(foldersToCreate, "policies")
	}
	for _, s := range foldersToCreate {
		if err := util.EnsureDir(path.Join(config.RecordPath, s)); err != nil {
			return nil, err
		}
	}

	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	return &Comparison{
		Experiments:   make([]*Experiment, 0),
		analyzerNames: make([]string, 0),
		analyzers:     make(map[string]Analyzer),
		comparators:   make(map[string]Comparator),
		cConfig:       config,
		printer:       NewTerminalPrinter(output),
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.analyzerNames = append(c.analyzerNames, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare. Names key the recorded files and datasets
// so they must be unique.
func (c *Comparison) AddExperiment(e *Experiment) error {
	for _, other := range c.Experiments {
		if other.Name == e.Name {
			return fmt.Errorf("%w: duplicate experiment %q", ErrInvalidConfig, e.Name)
		}
	}
	c.Experiments = append(c.Experiments, e)
	return nil
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil { // store configuration details to a file
		return err
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		c.printer.Done("Run %d", run+1)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			if _, err := e.Run(c.prepareRunConfig(ctx, run, longestNameLen)); err != nil {
				return err
			}
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for _, name := range c.analyzerNames {
			if err := c.comparators[name](run, c.cConfig.Episodes, names, datasets[name]); err != nil {
				return fmt.Errorf("comparator %s: %w", name, err)
			}
		}
	}
	return nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int, longestExpNameLen int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:     run,
		Episodes:       c.cConfig.Episodes,
		Horizon:        c.cConfig.Horizon,
		Rand:           rand.New(rand.NewSource(c.cConfig.Seed + uint64(run))),
		Analyzers:      make([]Analyzer, 0),
		Context:        ctx,
		RecordTraces:   c.cConfig.RecordTraces,
		RecordPolicy:   c.cConfig.RecordPolicy,
		ReportSavePath: c.cConfig.RecordPath,
		Printer:        c.printer,

		LongestExpNameLen: longestExpNameLen,
	}

	for _, name := range c.analyzerNames {
		rCfg.Analyzers = append(rCfg.Analyzers, c.analyzers[name])
	}
	return rCfg
}
