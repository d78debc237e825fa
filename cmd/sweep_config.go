package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/trace"
)

// HeuristicConfig tunes the heuristic and hybrid solvers. Zero fields select
// the solver defaults.
type HeuristicConfig struct {
	MaxIterations    int `yaml:"max_iterations"`
	MaxStale         int `yaml:"max_stale"`
	Scenarios        int `yaml:"scenarios"`
	HybridIterations int `yaml:"hybrid_iterations"`
	RefineRounds     int `yaml:"refine_rounds"`
	RefineBudget     int `yaml:"refine_budget"`
}

// SweepConfig represents a sweep YAML file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type SweepConfig struct {
	Solver     string           `yaml:"solver"`
	Assignment string           `yaml:"assignment"`
	Seed       int64            `yaml:"seed"`
	Trials     int              `yaml:"trials"`
	Runs       int              `yaml:"runs"`
	Stragglers *int             `yaml:"stragglers"` // nil selects K - q
	Workers    int              `yaml:"workers"`
	ResultsDir string           `yaml:"results_dir"`
	Preset     string           `yaml:"preset"`
	Parameters []sim.Parameters `yaml:"parameters"`
	Heuristic  HeuristicConfig  `yaml:"heuristic"`
}

// LoadSweepConfig reads and validates a sweep file. Unknown fields are
// rejected so typos surface as errors. An empty solver selects "random"; a
// preset's parameters come before any listed explicitly.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	var cfg SweepConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}
	if cfg.Solver == "" {
		cfg.Solver = "random"
	}
	if cfg.Preset != "" {
		preset, err := PresetParameters(cfg.Preset)
		if err != nil {
			return nil, err
		}
		cfg.Parameters = append(preset, cfg.Parameters...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sweep config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate returns the first configuration error.
func (c *SweepConfig) Validate() error {
	if !sim.ValidSolvers[c.Solver] {
		return fmt.Errorf("unknown solver %q; valid: random, heuristic, hybrid", c.Solver)
	}
	if !sim.ValidAssignmentKinds[c.Assignment] {
		return fmt.Errorf("unknown assignment kind %q; valid: dense, sparse", c.Assignment)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Runs < 0 {
		return fmt.Errorf("runs must be non-negative, got %d", c.Runs)
	}
	if c.Stragglers != nil && *c.Stragglers < 0 {
		return fmt.Errorf("stragglers must be non-negative, got %d", *c.Stragglers)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if len(c.Parameters) == 0 {
		return fmt.Errorf("no parameters to sweep")
	}
	for i, p := range c.Parameters {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("parameters[%d]: %w", i, err)
		}
	}
	return nil
}

// SolverConfig returns the solver tuning of the sweep.
func (c *SweepConfig) SolverConfig(st *trace.SearchTrace) sim.SolverConfig {
	return sim.SolverConfig{
		AssignmentKind:   c.Assignment,
		MaxIterations:    c.Heuristic.MaxIterations,
		MaxStale:         c.Heuristic.MaxStale,
		Scenarios:        c.Heuristic.Scenarios,
		HybridIterations: c.Heuristic.HybridIterations,
		Trace:            st,
	}
}

// SimulatorConfig returns the Monte-Carlo settings of the sweep.
func (c *SweepConfig) SimulatorConfig() sim.SimulatorConfig {
	stragglers := sim.DefaultStragglers
	if c.Stragglers != nil {
		stragglers = *c.Stragglers
	}
	return sim.SimulatorConfig{
		NumTrials:      c.Trials,
		NumStragglers:  stragglers,
		NumRuns:        c.Runs,
		Workers:        c.Workers,
		Seed:           c.Seed,
		RefineRounds:   c.Heuristic.RefineRounds,
		RefineBudget:   c.Heuristic.RefineBudget,
		Persist:        c.ResultsDir != "",
		AssignmentKind: c.Assignment,
	}
}
