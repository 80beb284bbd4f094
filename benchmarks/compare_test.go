package benchmarks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeu5/qlearning-nav/graph"
)

func setFlags(t *testing.T, eps int, a float64) string {
	t.Helper()
	old := []interface{}{episodes, horizon, runs, seed, alpha, gamma, saveFile}
	t.Cleanup(func() {
		episodes, horizon, runs = old[0].(int), old[1].(int), old[2].(int)
		seed, alpha, gamma = old[3].(uint64), old[4].(float64), old[5].(float64)
		saveFile = old[6].(string)
	})
	dir := t.TempDir()
	episodes, horizon, runs = eps, 100, 1
	seed, alpha, gamma = 1, a, 0.9
	saveFile = dir
	return dir
}

func TestCompareWritesEveryExperiment(t *testing.T) {
	// an alpha equal to the fast variant must not merge two experiments
	dir := setFlags(t, 50, 0.5)
	if err := Compare(context.Background(), graph.Reference(), 10, true); err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	names := []string{"Uniform", "Uniform-fast", "SoftMax"}
	files := []string{
		"comparison_config.json",
		filepath.Join("plots", "0_length.png"),
		filepath.Join("plots", "0_coverage.png"),
		filepath.Join("plots", "0_optimality.png"),
		filepath.Join("plots", "0_visits.png"),
	}
	for _, name := range names {
		files = append(files,
			filepath.Join("plots", "0_"+name+"_visits.png"),
			filepath.Join("traces", name+"_0.jsonl"),
			filepath.Join("policies", name+"_0.json"),
		)
	}
	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("expected %s to be written: %v", f, err)
		}
	}

	for _, suffix := range []string{"length", "coverage", "optimality"} {
		bs, err := os.ReadFile(filepath.Join(dir, "0_"+suffix+".json"))
		if err != nil {
			t.Fatalf("missing %s dataset: %v", suffix, err)
		}
		data := make(map[string][]float64)
		if err := json.Unmarshal(bs, &data); err != nil {
			t.Fatalf("invalid %s dataset: %v", suffix, err)
		}
		if len(data) != len(names) {
			t.Errorf("expected %d experiments in %s, got %d", len(names), suffix, len(data))
		}
		for _, name := range names {
			if len(data[name]) != 50 {
				t.Errorf("expected 50 %s values for %s, got %d", suffix, name, len(data[name]))
			}
		}
	}
}
