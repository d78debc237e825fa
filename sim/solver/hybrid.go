package solver

import "github.com/inference-sim/codedsim/sim"

// hybridRefineSalt separates the refinement RNG stream from the placement
// stream of the same seed.
const hybridRefineSalt = 0x5bd1e995

// HybridSolver builds a random placement and refines it with a bounded
// heuristic search, trading construction cost against quality.
type HybridSolver struct {
	random     *RandomSolver
	heuristic  *HeuristicSolver
	iterations int
}

var (
	_ sim.Solver  = (*HybridSolver)(nil)
	_ sim.Refiner = (*HybridSolver)(nil)
)

// NewHybridSolver creates a HybridSolver.
func NewHybridSolver(cfg sim.SolverConfig) *HybridSolver {
	return &HybridSolver{
		random:     NewRandomSolver(cfg),
		heuristic:  NewHeuristicSolver(cfg),
		iterations: orDefault(cfg.HybridIterations, DefaultHybridIterations),
	}
}

// Name implements sim.Solver.
func (h *HybridSolver) Name() string { return "HybridSolver" }

// Solve implements sim.Solver.
func (h *HybridSolver) Solve(p sim.Parameters, seed int64) (sim.Assignment, error) {
	a, err := h.random.Solve(p, seed)
	if err != nil {
		return nil, err
	}
	if _, err := h.heuristic.Refine(a, p, seed^hybridRefineSalt, h.iterations); err != nil {
		return nil, err
	}
	return a, nil
}

// Refine implements sim.Refiner. A non-positive budget selects the hybrid
// iteration budget.
func (h *HybridSolver) Refine(a sim.Assignment, p sim.Parameters, seed int64, budget int) (int, error) {
	return h.heuristic.Refine(a, p, seed, orDefault(budget, h.iterations))
}
