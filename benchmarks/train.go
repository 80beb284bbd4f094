package benchmarks

import (
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/policies"
	"github.com/zeu5/qlearning-nav/types"
	"golang.org/x/exp/rand"
)

// Train learns a table on g. With more than one worker the episodes are
// split among parallel agents sharing the table.
func Train(ctx context.Context, g *graph.Graph, workers int) (*policies.QLearning, *types.RunStats, error) {
	for _, s := range g.Unreachable() {
		log.Printf("warning: the goal cannot be reached from %s", g.Name(s))
	}

	if workers > 1 {
		return policies.TrainParallel(ctx, g, policies.ParallelConfig{
			Workers:  workers,
			Episodes: episodes,
			Horizon:  horizon,
			Seed:     seed,
			Alpha:    alpha,
			Gamma:    gamma,
		})
	}

	r := rand.New(rand.NewSource(seed))
	learner, err := policies.NewQLearning(g, policies.QLearningConfig{
		Alpha: alpha,
		Gamma: gamma,
		Rand:  r,
	})
	if err != nil {
		return nil, nil, err
	}
	agent, err := types.NewAgent(&types.AgentConfig{
		Episodes:    episodes,
		Horizon:     horizon,
		Rand:        r,
		Policy:      learner,
		Environment: g,
	})
	if err != nil {
		return nil, nil, err
	}
	stats, err := agent.Run(ctx)
	return learner, stats, err
}

func TrainCommand() *cobra.Command {
	var workers int
	var noColor bool
	var record bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Learn the table and print it along with the greedy policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadEnvironment()
			if err != nil {
				return err
			}
			stopProfiling, err := startProfiling()
			if err != nil {
				return err
			}

			ctx, done := interruptContext()
			defer done()

			start := time.Now()
			learner, stats, err := Train(ctx, g, workers)
			stopProfiling()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, FormatTable(g, learner.Table().Rows()))
			fmt.Fprint(out, FormatPolicy(g, learner.Policy(), aurora.NewAurora(!noColor)))
			fmt.Fprintln(out, FormatStats(stats))
			fmt.Fprintln(out, elapsed(start))

			if record {
				recordPath := path.Join(saveFile, "qtable.json")
				if err := learner.Record(recordPath); err != nil {
					return fmt.Errorf("recording table: %w", err)
				}
				fmt.Fprintf(out, "Table recorded to %s\n", recordPath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "Number of agents training in parallel")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Print the policy without colors")
	cmd.Flags().BoolVar(&record, "record", false, "Record the table in the save folder")
	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file in the save folder")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "Write a heap profile to this file in the save folder")
	return cmd
}
