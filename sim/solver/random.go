package solver

import (
	"math/rand"

	"github.com/inference-sim/codedsim/sim"
)

// RandomSolver places every coded row in a batch drawn uniformly from the
// batches that still have capacity. Since total capacity equals the total
// number of rows, both batch and partition totals come out exact.
type RandomSolver struct {
	kind string
}

var _ sim.Solver = (*RandomSolver)(nil)

// NewRandomSolver creates a RandomSolver.
func NewRandomSolver(cfg sim.SolverConfig) *RandomSolver {
	return &RandomSolver{kind: cfg.AssignmentKind}
}

// Name implements sim.Solver.
func (r *RandomSolver) Name() string { return "RandomSolver" }

// Solve implements sim.Solver. The same seed always yields the same
// assignment.
func (r *RandomSolver) Solve(p sim.Parameters, seed int64) (sim.Assignment, error) {
	if err := CheckFeasible(p); err != nil {
		return nil, err
	}
	nb := p.NumBatches()
	a, err := sim.NewAssignment(r.kind, nb, p.NumPartitions)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	capacity := make([]int, nb)
	open := make([]int, nb) // batches with capacity left
	for b := range capacity {
		capacity[b] = p.RowsPerBatch
		open[b] = b
	}
	for part := 0; part < p.NumPartitions; part++ {
		for row := p.RowsPerPartition(part); row > 0; row-- {
			i := rng.Intn(len(open))
			b := open[i]
			if err := a.Increment(b, part); err != nil {
				return nil, err
			}
			capacity[b]--
			if capacity[b] == 0 {
				open[i] = open[len(open)-1]
				open = open[:len(open)-1]
			}
		}
	}
	return a, nil
}
