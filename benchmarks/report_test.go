package benchmarks

import (
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/zeu5/qlearning-nav/graph"
	"github.com/zeu5/qlearning-nav/types"
)

func TestFormatTable(t *testing.T) {
	g := graph.Reference()
	rows := make([][]float64, g.NumStates())
	for i := range rows {
		rows[i] = make([]float64, g.NumStates())
	}
	rows[1][2] = 100
	rows[0][1] = 90

	out := FormatTable(g, rows)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 || lines[0] != "Print result" {
		t.Fatalf("unexpected table %q", out)
	}
	if !strings.HasPrefix(lines[1], "out from A:  0.00 90.00 ") {
		t.Errorf("unexpected line for A %q", lines[1])
	}
	if !strings.Contains(lines[2], "100.00") {
		t.Errorf("unexpected line for B %q", lines[2])
	}
}

func TestFormatPolicy(t *testing.T) {
	g := graph.Reference()
	name := func(n string) types.State {
		s, _ := g.State(n)
		return s
	}
	policy := []types.State{name("B"), name("C"), name("C"), name("A"), name("D"), name("C")}

	out := FormatPolicy(g, policy, aurora.NewAurora(false))
	for _, line := range []string{"from A goto B", "from B goto C", "from C goto C", "from E goto D", "from F goto C"} {
		if !strings.Contains(out, line) {
			t.Errorf("missing %q in %q", line, out)
		}
	}

	colored := FormatPolicy(g, policy, aurora.NewAurora(true))
	// E goto D is not on a shortest path
	if !strings.Contains(colored, aurora.Red("from E goto D").String()) {
		t.Errorf("expected the move from E in red")
	}
	if !strings.Contains(colored, aurora.Green("from A goto B").String()) {
		t.Errorf("expected the move from A in green")
	}
}

func TestFormatStats(t *testing.T) {
	out := FormatStats(&types.RunStats{Episodes: 10, Timesteps: 40, GoalReached: 9, HorizonAborted: 1})
	if out != "Episodes: 10, Timesteps: 40, Goal: 9, Horizon: 1" {
		t.Errorf("unexpected stats %q", out)
	}
}
