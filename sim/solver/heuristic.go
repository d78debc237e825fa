package solver

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/trace"
)

// HeuristicSolver builds a round-robin placement and improves it by local
// search. A candidate move swaps one row between two batches (two decrements,
// then two increments), which keeps every batch and partition total. Only
// moves that strictly lower the coverage objective are applied, so the
// objective never worsens. The search stops after maxIterations candidates
// or maxStale consecutive non-improving candidates.
type HeuristicSolver struct {
	kind          string
	maxIterations int
	maxStale      int
	scenarios     int
	trace         *trace.SearchTrace
}

var (
	_ sim.Solver  = (*HeuristicSolver)(nil)
	_ sim.Refiner = (*HeuristicSolver)(nil)
)

// NewHeuristicSolver creates a HeuristicSolver. Zero config fields select
// the package defaults.
func NewHeuristicSolver(cfg sim.SolverConfig) *HeuristicSolver {
	return &HeuristicSolver{
		kind:          cfg.AssignmentKind,
		maxIterations: orDefault(cfg.MaxIterations, DefaultMaxIterations),
		maxStale:      orDefault(cfg.MaxStale, DefaultMaxStale),
		scenarios:     orDefault(cfg.Scenarios, DefaultScenarios),
		trace:         cfg.Trace,
	}
}

// Name implements sim.Solver.
func (h *HeuristicSolver) Name() string { return "HeuristicSolver" }

// Solve implements sim.Solver.
func (h *HeuristicSolver) Solve(p sim.Parameters, seed int64) (sim.Assignment, error) {
	if err := CheckFeasible(p); err != nil {
		return nil, err
	}
	a, err := roundRobin(p, h.kind)
	if err != nil {
		return nil, err
	}
	if _, err := h.Refine(a, p, seed, h.maxIterations); err != nil {
		return nil, err
	}
	return a, nil
}

// roundRobin places coded row i, counted in partition order, in batch
// i mod B. Every batch receives exactly RowsPerBatch rows.
func roundRobin(p sim.Parameters, kind string) (sim.Assignment, error) {
	nb := p.NumBatches()
	a, err := sim.NewAssignment(kind, nb, p.NumPartitions)
	if err != nil {
		return nil, err
	}
	i := 0
	for part := 0; part < p.NumPartitions; part++ {
		for row := p.RowsPerPartition(part); row > 0; row-- {
			if err := a.Increment(i%nb, part); err != nil {
				return nil, err
			}
			i++
		}
	}
	return a, nil
}

// Refine implements sim.Refiner. a must be a valid assignment for p; it is
// mutated in place and stays valid after every applied move. A non-positive
// budget selects maxIterations.
func (h *HeuristicSolver) Refine(a sim.Assignment, p sim.Parameters, seed int64, budget int) (int, error) {
	if err := sim.VerifyAssignment(a, p); err != nil {
		return 0, fmt.Errorf("refining %s: %w", p.Identifier(), err)
	}
	design, err := sim.NewBatchDesign(p)
	if err != nil {
		return 0, err
	}
	defer h.trace.EndSearch()
	nb := design.NumBatches()
	if nb < 2 {
		return 0, nil
	}
	budget = orDefault(budget, h.maxIterations)

	rng := rand.New(rand.NewSource(seed))
	obj := newCoverageObjective(p, design, a, rng, h.scenarios)
	rows := batchRows(a)
	start := obj.value

	moves, stale := 0, 0
	for it := 0; it < budget && stale < h.maxStale; it++ {
		b1 := rng.Intn(nb)
		b2 := rng.Intn(nb - 1)
		if b2 >= b1 {
			b2++
		}
		i1, i2 := rng.Intn(len(rows[b1])), rng.Intn(len(rows[b2]))
		p1, p2 := rows[b1][i1], rows[b2][i2]
		if p1 == p2 {
			stale++
			continue
		}
		d := obj.delta(b1, b2, p1, p2)
		if d >= 0 {
			stale++
			continue
		}
		if err := swapRows(a, b1, b2, p1, p2); err != nil {
			return moves, fmt.Errorf("refining %s: %w", p.Identifier(), err)
		}
		before := obj.value
		obj.apply(b1, b2, p1, p2, d)
		rows[b1][i1], rows[b2][i2] = p2, p1
		if h.trace.Enabled() {
			h.trace.RecordMove(trace.MoveRecord{
				Identifier: p.Identifier(),
				Iteration:  it,
				BatchA:     b1,
				BatchB:     b2,
				PartitionA: p1,
				PartitionB: p2,
				Before:     before,
				After:      obj.value,
			})
		}
		moves++
		stale = 0
	}
	logrus.Debugf("%s: %d moves, objective %d -> %d over %d scenarios", p.Identifier(), moves, start, obj.value, h.scenarios)
	return moves, nil
}

// batchRows lists, for every batch, one entry per stored row holding the
// row's partition.
func batchRows(a sim.Assignment) [][]int {
	rows := make([][]int, a.NumBatches())
	for b := range rows {
		rows[b] = make([]int, 0, a.BatchRows(b))
		a.ForEachNonZero(b, func(part, n int) {
			for ; n > 0; n-- {
				rows[b] = append(rows[b], part)
			}
		})
	}
	return rows
}

// swapRows moves a row of p1 from b1 to b2 and a row of p2 from b2 to b1
// using only Decrement and Increment. If any step fails the applied steps are
// undone, leaving a unchanged.
func swapRows(a sim.Assignment, b1, b2, p1, p2 int) error {
	type step struct {
		batch, part int
		inc         bool
	}
	steps := []step{{b1, p1, false}, {b2, p2, false}, {b1, p2, true}, {b2, p1, true}}
	for i, s := range steps {
		var err error
		if s.inc {
			err = a.Increment(s.batch, s.part)
		} else {
			err = a.Decrement(s.batch, s.part)
		}
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				u := steps[j]
				if u.inc {
					_ = a.Decrement(u.batch, u.part)
				} else {
					_ = a.Increment(u.batch, u.part)
				}
			}
			return err
		}
	}
	return nil
}
