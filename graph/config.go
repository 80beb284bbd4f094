package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes a navigation graph. Transitions maps every state to the
// ordered list of states reachable from it in one move, the goal may be left
// out in which case it loops on itself.
type Config struct {
	States      []string            `yaml:"states" json:"states"`
	Goal        string              `yaml:"goal" json:"goal"`
	Transitions map[string][]string `yaml:"transitions" json:"transitions"`
	Rewards     []RewardConfig      `yaml:"rewards" json:"rewards"`
}

// RewardConfig sets the reward of moving From -> To. Unlisted moves pay 0.
type RewardConfig struct {
	From   string `yaml:"from" json:"from"`
	To     string `yaml:"to" json:"to"`
	Reward int    `yaml:"reward" json:"reward"`
}

// Load reads a config file. JSON being a subset of YAML both formats work.
func Load(filePath string) (*Config, error) {
	bs, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading environment config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(bs, cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config %s: %w", filePath, err)
	}
	return cfg, nil
}

// LoadGraph reads the config file and builds the graph from it
func LoadGraph(filePath string) (*Graph, error) {
	cfg, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// ReferenceConfig is the six room layout
//
//	A B C
//	D E F
//
// with the goal in C and a reward of 100 for entering it.
func ReferenceConfig() *Config {
	return &Config{
		States: []string{"A", "B", "C", "D", "E", "F"},
		Goal:   "C",
		Transitions: map[string][]string{
			"A": {"B", "D"},
			"B": {"A", "C", "E"},
			"C": {"C"},
			"D": {"A", "E"},
			"E": {"B", "D", "F"},
			"F": {"C", "E"},
		},
		Rewards: []RewardConfig{
			{From: "B", To: "C", Reward: 100},
			{From: "F", To: "C", Reward: 100},
		},
	}
}

// Reference builds the graph of ReferenceConfig
func Reference() *Graph {
	g, err := New(ReferenceConfig())
	if err != nil {
		panic(err)
	}
	return g
}
