package sim_test

// Blank imports trigger the init() of sim/assignment and sim/solver, which
// register NewAssignmentFunc and NewSolverFunc. This allows package sim's
// internal test files to build assignments and solvers without importing
// those packages directly (which would create an import cycle).
import (
	_ "github.com/inference-sim/codedsim/sim/assignment"
	_ "github.com/inference-sim/codedsim/sim/solver"
)
