package sim

import (
	"fmt"

	"github.com/inference-sim/codedsim/sim/trace"
)

// Solver constructs an Assignment satisfying the batch and partition totals
// for the given parameters. Random-based solvers are deterministic for a
// seed. Parameters no placement can satisfy yield an error wrapping
// ErrInfeasible before any construction is attempted.
type Solver interface {
	Name() string
	Solve(p Parameters, seed int64) (Assignment, error)
}

// Refiner improves an existing Assignment in place. Refine applies at most
// budget moves' worth of search and returns the number of moves applied.
// The Assignment satisfies every invariant whenever Refine returns.
type Refiner interface {
	Refine(a Assignment, p Parameters, seed int64, budget int) (int, error)
}

// SolverConfig groups solver tuning knobs. Zero values select defaults.
type SolverConfig struct {
	AssignmentKind   string             // "dense" (default) or "sparse"
	MaxIterations    int                // candidate moves per heuristic search (default 20000)
	MaxStale         int                // consecutive non-improving candidates before stopping (default 2000)
	Scenarios        int                // sampled finished-server sets in the heuristic objective (default 64)
	HybridIterations int                // refinement budget of the hybrid solver (default 2000)
	Trace            *trace.SearchTrace // nil disables move tracing
}

// NewSolverFunc constructs a Solver by name. Set by sim/solver's init().
var NewSolverFunc func(name string, cfg SolverConfig) (Solver, error)

// ValidSolvers is the set of recognized solver names.
var ValidSolvers = map[string]bool{"random": true, "heuristic": true, "hybrid": true}

// NewSolver constructs the named Solver.
func NewSolver(name string, cfg SolverConfig) (Solver, error) {
	if NewSolverFunc == nil {
		panic("NewSolverFunc not registered: import sim/solver to register it " +
			"(add: import _ \"github.com/inference-sim/codedsim/sim/solver\")")
	}
	if !ValidSolvers[name] {
		return nil, fmt.Errorf("unknown solver %q; valid: random, heuristic, hybrid", name)
	}
	if !ValidAssignmentKinds[cfg.AssignmentKind] {
		return nil, fmt.Errorf("unknown assignment kind %q", cfg.AssignmentKind)
	}
	return NewSolverFunc(name, cfg)
}
