package solver

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/trace"
)

var solverNames = []string{"random", "heuristic", "hybrid"}

func mustParams(t *testing.T, rows, k, q, n int, mu float64, parts int) sim.Parameters {
	t.Helper()
	p, err := sim.NewParameters(rows, k, q, n, mu, parts)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	for _, name := range solverNames {
		s, err := New(name, sim.SolverConfig{})
		require.NoError(t, err)
		assert.NotEmpty(t, s.Name())
	}
	_, err := New("genetic", sim.SolverConfig{})
	assert.Error(t, err)
}

func TestSolvers_SatisfyTotals(t *testing.T) {
	cases := []struct {
		name string
		p    sim.Parameters
	}{
		{"K9 T6 mu1/3", mustParams(t, 10, 9, 6, 6, 1.0/3, 6)},
		{"uneven partitions", mustParams(t, 3, 6, 4, 2, 0.5, 7)},
		{"one partition", mustParams(t, 2, 4, 2, 1, 0.5, 1)},
		{"every row its own partition", mustParams(t, 1, 5, 5, 1, 0.2, 5)},
	}
	for _, name := range solverNames {
		for _, kind := range []string{"dense", "sparse"} {
			for _, tc := range cases {
				t.Run(name+"/"+kind+"/"+tc.name, func(t *testing.T) {
					// GIVEN a feasible instance
					s, err := New(name, sim.SolverConfig{AssignmentKind: kind, MaxIterations: 2000, MaxStale: 200, HybridIterations: 500})
					require.NoError(t, err)

					// WHEN solved
					a, err := s.Solve(tc.p, 17)
					require.NoError(t, err)

					// THEN every batch and partition total is exact
					assert.NoError(t, sim.VerifyAssignment(a, tc.p))
				})
			}
		}
	}
}

func TestSolvers_Deterministic(t *testing.T) {
	p := mustParams(t, 4, 6, 4, 2, 0.5, 9)
	for _, name := range solverNames {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, sim.SolverConfig{MaxIterations: 1000})
			require.NoError(t, err)
			a, err := s.Solve(p, 123)
			require.NoError(t, err)
			b, err := s.Solve(p, 123)
			require.NoError(t, err)
			if diff := cmp.Diff(a.Cells(), b.Cells()); diff != "" {
				t.Errorf("same seed, different assignment (-first +second):\n%s", diff)
			}
		})
	}
}

func TestCheckFeasible(t *testing.T) {
	tests := []struct {
		name       string
		p          sim.Parameters
		infeasible bool
	}{
		{"K9 T6 mu1/3", mustParams(t, 10, 9, 6, 6, 1.0/3, 6), false},
		{"mu below 1/q", mustParams(t, 10, 9, 6, 6, 0.1, 6), true},
		{"mu*q not integer", mustParams(t, 10, 9, 6, 6, 0.25, 6), true},
		{"more partitions than rows", mustParams(t, 1, 4, 2, 1, 0.5, 5), true},
		{"partitions equal rows", mustParams(t, 1, 4, 2, 1, 0.5, 4), false},
		{"batches above limit", mustParams(t, 1, 64, 64, 1, 0.5, 1), true},
		{"batch count overflows", mustParams(t, 1, 100, 100, 1, 0.5, 1), true},
		{"coded rows above limit", mustParams(t, 1<<36, 9, 6, 6, 1.0/3, 6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFeasible(tt.p)
			if tt.infeasible {
				assert.ErrorIs(t, err, sim.ErrInfeasible)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Error(t, CheckFeasible(sim.Parameters{}))
}

func TestSolvers_RejectInfeasible(t *testing.T) {
	p := mustParams(t, 10, 9, 6, 6, 0.1, 6)
	for _, name := range solverNames {
		s, err := New(name, sim.SolverConfig{})
		require.NoError(t, err)
		_, err = s.Solve(p, 1)
		assert.ErrorIs(t, err, sim.ErrInfeasible, name)
	}
}

func TestSolvers_RejectOversizedDesign(t *testing.T) {
	// GIVEN K=100, q=100, mu=1/2 whose C(100, 50) batches do not fit in an int
	p := mustParams(t, 1, 100, 100, 1, 0.5, 1)
	for _, name := range solverNames {
		s, err := New(name, sim.SolverConfig{})
		require.NoError(t, err)

		// WHEN solved, THEN the solver reports infeasibility instead of allocating
		var a sim.Assignment
		require.NotPanics(t, func() { a, err = s.Solve(p, 1) }, name)
		assert.ErrorIs(t, err, sim.ErrInfeasible, name)
		assert.Nil(t, a, name)
	}
}

func TestRoundRobin(t *testing.T) {
	// 8 coded rows over 4 batches and 4 partitions: row i lands in batch i mod 4
	p := mustParams(t, 2, 4, 2, 1, 0.5, 4)
	a, err := roundRobin(p, "dense")
	require.NoError(t, err)
	want := [][]int{{1, 0, 1, 0}, {1, 0, 1, 0}, {0, 1, 0, 1}, {0, 1, 0, 1}}
	assert.Equal(t, want, a.Cells())
	assert.NoError(t, sim.VerifyAssignment(a, p))
}

func TestHeuristic_MovesOnlyImprove(t *testing.T) {
	// GIVEN a heuristic solver with move tracing
	st := trace.NewSearchTrace(trace.TraceConfig{Level: trace.TraceLevelMoves})
	s := NewHeuristicSolver(sim.SolverConfig{MaxIterations: 5000, Scenarios: 32, Trace: st})
	p := mustParams(t, 4, 6, 2, 1, 0.5, 12)

	// WHEN it solves an instance whose round-robin start stores the same
	// partitions in batches 0 and 1
	a, err := s.Solve(p, 9)
	require.NoError(t, err)
	require.NoError(t, sim.VerifyAssignment(a, p))

	// THEN every applied move strictly lowered the objective
	require.NotEmpty(t, st.Moves)
	for _, m := range st.Moves {
		assert.Less(t, m.After, m.Before, "iteration %d", m.Iteration)
	}
	assert.Equal(t, 1, st.Searches)
}

func TestHeuristic_RefineKeepsInvariants(t *testing.T) {
	// GIVEN a random placement
	p := mustParams(t, 3, 6, 4, 2, 0.5, 10)
	a, err := NewRandomSolver(sim.SolverConfig{}).Solve(p, 4)
	require.NoError(t, err)
	h := NewHeuristicSolver(sim.SolverConfig{})

	// WHEN refined with a small budget
	moves, err := h.Refine(a, p, 5, 100)
	require.NoError(t, err)

	// THEN the totals hold and no more moves than candidates were applied
	assert.NoError(t, sim.VerifyAssignment(a, p))
	assert.LessOrEqual(t, moves, 100)
}

func TestHeuristic_RefineRejectsInvalidAssignment(t *testing.T) {
	p := mustParams(t, 2, 4, 2, 1, 0.5, 4)
	a, err := sim.NewAssignment("dense", 4, 4)
	require.NoError(t, err)
	_, err = NewHeuristicSolver(sim.SolverConfig{}).Refine(a, p, 1, 10)
	assert.Error(t, err)
}

func TestSwapRows_RollsBackOnUnderflow(t *testing.T) {
	// GIVEN batch 1 holds no row of partition 1
	a, err := sim.NewAssignment("dense", 2, 2)
	require.NoError(t, err)
	require.NoError(t, a.Increment(0, 0))
	require.NoError(t, a.Increment(1, 0))
	before := a.Cells()

	// WHEN a swap needs that row
	err = swapRows(a, 0, 1, 0, 1)

	// THEN it fails and the table is untouched
	assert.ErrorIs(t, err, sim.ErrUnderflow)
	assert.Equal(t, before, a.Cells())
}

func TestHybrid_RefineDelegates(t *testing.T) {
	p := mustParams(t, 3, 6, 4, 2, 0.5, 10)
	h := NewHybridSolver(sim.SolverConfig{HybridIterations: 50})
	a, err := h.Solve(p, 2)
	require.NoError(t, err)
	moves, err := h.Refine(a, p, 3, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, moves, 50)
	assert.NoError(t, sim.VerifyAssignment(a, p))
}

func TestCoverageObjective_DeltaMatchesRecount(t *testing.T) {
	// GIVEN an objective over a random placement
	p := mustParams(t, 3, 6, 4, 2, 0.5, 10)
	a, err := NewRandomSolver(sim.SolverConfig{}).Solve(p, 8)
	require.NoError(t, err)
	design, err := sim.NewBatchDesign(p)
	require.NoError(t, err)
	rows := batchRows(a)

	// find a swappable pair
	b1, b2, p1, p2 := 0, -1, 0, 0
	for b := 1; b < len(rows) && b2 < 0; b++ {
		for _, x := range rows[b1] {
			for _, y := range rows[b] {
				if x != y {
					b2, p1, p2 = b, x, y
				}
			}
		}
	}
	require.GreaterOrEqual(t, b2, 1)

	obj := newCoverageObjective(p, design, a, newSeededRand(1), 16)
	d := obj.delta(b1, b2, p1, p2)

	// WHEN the swap is applied and the objective rebuilt on the same scenarios
	require.NoError(t, swapRows(a, b1, b2, p1, p2))
	fresh := newCoverageObjective(p, design, a, newSeededRand(1), 16)

	// THEN delta predicted the change exactly
	assert.Equal(t, obj.value+d, fresh.value)
}

func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
