package benchmarks

import (
	"fmt"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/types"
)

// FormatTable prints one line of values per state with two decimals
func FormatTable(env types.Environment, rows [][]float64) string {
	b := new(strings.Builder)
	b.WriteString("Print result\n")
	for i, row := range rows {
		fmt.Fprintf(b, "out from %s:  ", env.Name(types.State(i)))
		for _, v := range row {
			fmt.Fprintf(b, "%.2f ", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatPolicy prints the move of every state, green when it lies on a
// shortest path to the goal and red otherwise
func FormatPolicy(g *graph.Graph, policy []types.State, au aurora.Aurora) string {
	b := new(strings.Builder)
	b.WriteString("\nshowPolicy\n")
	for i, to := range policy {
		from := types.State(i)
		line := fmt.Sprintf("from %s goto %s", g.Name(from), g.Name(to))
		optimal := false
		for _, a := range g.OptimalActions(from) {
			if a == to {
				optimal = true
				break
			}
		}
		if optimal {
			fmt.Fprintln(b, au.Green(line).String())
		} else {
			fmt.Fprintln(b, au.Red(line).String())
		}
	}
	return b.String()
}

func FormatStats(stats *types.RunStats) string {
	return fmt.Sprintf("Episodes: %d, Timesteps: %d, Goal: %d, Horizon: %d",
		stats.Episodes, stats.Timesteps, stats.GoalReached, stats.HorizonAborted)
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("Time: %.3fsec.", time.Since(start).Seconds())
}
