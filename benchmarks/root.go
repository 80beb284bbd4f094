package benchmarks

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/policies"
)

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
	seed     uint64
	alpha    float64
	gamma    float64
	envFile  string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "qlearning-nav",
		Short:         "Tabular Q-learning on small navigation graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", policies.DefaultEpisodes, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 1000, "Maximum steps of each episode, 0 for unbounded")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 1, "Seed of the random streams")
	rootCommand.PersistentFlags().Float64Var(&alpha, "alpha", policies.DefaultAlpha, "Learning rate")
	rootCommand.PersistentFlags().Float64Var(&gamma, "gamma", policies.DefaultGamma, "Discount factor")
	rootCommand.PersistentFlags().StringVar(&envFile, "env", "", "YAML file describing the environment, the six room reference when empty")
	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(CompareCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}

func loadEnvironment() (*graph.Graph, error) {
	if envFile == "" {
		return graph.Reference(), nil
	}
	return graph.LoadGraph(envFile)
}

// interruptContext is cancelled on an interrupt or when done is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt) // channel for interrupts from os

	doneCh := make(chan struct{}) // channel for done signal from application

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}
