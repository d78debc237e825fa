package solver

import (
	"fmt"

	"github.com/inference-sim/codedsim/sim"
)

// Defaults for zero-valued sim.SolverConfig fields.
const (
	DefaultMaxIterations    = 20000
	DefaultMaxStale         = 2000
	DefaultScenarios        = 64
	DefaultHybridIterations = 2000
)

// New constructs the named solver ("random", "heuristic" or "hybrid").
func New(name string, cfg sim.SolverConfig) (sim.Solver, error) {
	switch name {
	case "random":
		return NewRandomSolver(cfg), nil
	case "heuristic":
		return NewHeuristicSolver(cfg), nil
	case "hybrid":
		return NewHybridSolver(cfg), nil
	}
	return nil, fmt.Errorf("unknown solver %q", name)
}

// CheckFeasible reports whether any valid placement exists for p. It never
// constructs anything, and designs above sim.MaxBatches batches or
// sim.MaxCodedRows rows are rejected here. Invalid parameters are returned as validation errors;
// valid parameters without a placement yield an error wrapping
// sim.ErrInfeasible.
func CheckFeasible(p sim.Parameters) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", p.Identifier(), err)
	}
	muq := p.ServerStorage * float64(p.DecodingGroupSize)
	if !p.ServersPerBatchExact() {
		return fmt.Errorf("%s: mu*q = %v is not a positive integer, so no batch has a whole set of servers: %w",
			p.Identifier(), muq, sim.ErrInfeasible)
	}
	if p.ServersPerBatch() > p.NumServers {
		return fmt.Errorf("%s: mu*q = %d exceeds %d servers: %w", p.Identifier(), p.ServersPerBatch(), p.NumServers, sim.ErrInfeasible)
	}
	if p.NumBatches() == 0 {
		return fmt.Errorf("%s: C(%d, %d) batches exceed %d: %w",
			p.Identifier(), p.NumServers, p.ServersPerBatch(), sim.MaxBatches, sim.ErrInfeasible)
	}
	if p.NumCodedRows() == 0 {
		return fmt.Errorf("%s: %d rows per batch over %d batches exceed %d coded rows: %w",
			p.Identifier(), p.RowsPerBatch, p.NumBatches(), sim.MaxCodedRows, sim.ErrInfeasible)
	}
	if p.NumPartitions > p.NumCodedRows() {
		return fmt.Errorf("%s: %d partitions exceed %d coded rows: %w",
			p.Identifier(), p.NumPartitions, p.NumCodedRows(), sim.ErrInfeasible)
	}
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
