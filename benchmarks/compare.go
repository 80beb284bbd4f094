package benchmarks

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/policies"
	"github.com/zeu5/qlearning-nav/types"
	"golang.org/x/exp/rand"
)

// Compare runs the exploration variants side by side on g and stores the
// plots and datasets under saveFile. Uniform and SoftMax learn with the
// --alpha rate, Uniform-fast with 0.5.
func Compare(ctx context.Context, g *graph.Graph, temperature float64, recordTraces bool) error {
	c, err := types.NewComparison(&types.ComparisonConfig{
		Runs:       runs,
		Episodes:   episodes,
		Horizon:    horizon,
		Seed:       seed,
		RecordPath: saveFile,
		// record flags
		RecordTraces: recordTraces,
		RecordPolicy: true,
	})
	if err != nil {
		return err
	}

	plotPath := path.Join(saveFile, "plots")
	c.AddAnalysis("EpisodeLength", types.EpisodeLengthAnalyzer(), types.Combine(
		types.LinePlotComparator(plotPath, "Steps", "length"),
		types.JSONComparator(saveFile, "length"),
	))
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer(), types.Combine(
		types.LinePlotComparator(plotPath, "Pairs", "coverage"),
		types.JSONComparator(saveFile, "coverage"),
	))
	c.AddAnalysis("Optimality", graph.NewOptimalityAnalyzer(g), types.Combine(
		types.LinePlotComparator(plotPath, "Optimal", "optimality"),
		types.JSONComparator(saveFile, "optimality"),
	))
	c.AddAnalysis("Visits", graph.NewVisitAnalyzer(g), graph.HeatMapComparator(plotPath))

	variants := []struct {
		name     string
		alpha    float64
		explorer func(*rand.Rand) policies.Explorer
	}{
		{
			name:  "Uniform",
			alpha: alpha,
			explorer: func(r *rand.Rand) policies.Explorer {
				return policies.NewUniformExplorer(r)
			},
		},
		{
			name:  "Uniform-fast",
			alpha: 0.5,
			explorer: func(r *rand.Rand) policies.Explorer {
				return policies.NewUniformExplorer(r)
			},
		},
		{
			name:  "SoftMax",
			alpha: alpha,
			explorer: func(r *rand.Rand) policies.Explorer {
				return policies.NewSoftMaxExplorer(temperature, r)
			},
		},
	}
	for i, v := range variants {
		r := rand.New(rand.NewSource(seed + uint64(i)))
		learner, err := policies.NewQLearning(g, policies.QLearningConfig{
			Alpha:    v.alpha,
			Gamma:    gamma,
			Explorer: v.explorer(r),
		})
		if err != nil {
			return err
		}
		if err := c.AddExperiment(types.NewExperiment(v.name, learner, g)); err != nil {
			return err
		}
	}

	return c.Run(ctx)
}

func CompareCommand() *cobra.Command {
	var temperature float64
	var recordTraces bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare exploration strategies and learning rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadEnvironment()
			if err != nil {
				return err
			}
			ctx, done := interruptContext()
			defer done()

			start := time.Now()
			if err := Compare(ctx, g, temperature, recordTraces); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), elapsed(start))
			return nil
		},
	}
	cmd.Flags().Float64Var(&temperature, "temperature", 10, "Temperature of the softmax explorer")
	cmd.Flags().BoolVar(&recordTraces, "traces", false, "Record the traces of every episode")
	return cmd
}
