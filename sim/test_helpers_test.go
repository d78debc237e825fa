package sim

import (
	"fmt"
	"sync"
	"testing"
)

// memStore is an in-memory ResultStore for simulator tests.
type memStore struct {
	mu          sync.Mutex
	assignments map[string]Assignment
	results     map[string]*Result
	saves       int
	loadErr     error // returned by every LoadAssignment when set
}

func newMemStore() *memStore {
	return &memStore{assignments: map[string]Assignment{}, results: map[string]*Result{}}
}

func (m *memStore) LoadAssignment(solver, key, _ string) (Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	a, ok := m.assignments[solver+"/"+key]
	if !ok {
		return nil, fmt.Errorf("assignment %s/%s: %w", solver, key, ErrNotFound)
	}
	return a.Clone(), nil
}

func (m *memStore) SaveAssignment(solver, key string, a Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[solver+"/"+key] = a.Clone()
	m.saves++
	return nil
}

func (m *memStore) SaveResult(r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.Solver+"/"+r.Identifier] = r
	return nil
}

func (m *memStore) LoadResult(solver string, p Parameters) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[solver+"/"+p.Identifier()]
	if !ok {
		return nil, fmt.Errorf("result %s/%s: %w", solver, p.Identifier(), ErrNotFound)
	}
	return r, nil
}

// fixedSolver returns a copy of a hand-placed table and counts its calls.
type fixedSolver struct {
	cells [][]int
	calls int
}

func (f *fixedSolver) Name() string { return "FixedSolver" }

func (f *fixedSolver) Solve(p Parameters, _ int64) (Assignment, error) {
	f.calls++
	if len(f.cells) != p.NumBatches() {
		return nil, fmt.Errorf("fixed table has %d batches, want %d: %w", len(f.cells), p.NumBatches(), ErrInfeasible)
	}
	return assignmentFromCells(f.cells)
}

// refiningSolver wraps fixedSolver with a Refiner that records its calls
// and applies no moves.
type refiningSolver struct {
	fixedSolver
	refines int
}

func (r *refiningSolver) Name() string { return "RefiningSolver" }

func (r *refiningSolver) Refine(_ Assignment, _ Parameters, _ int64, _ int) (int, error) {
	r.refines++
	return 1, nil
}

// assignmentFromCells builds a dense Assignment from a batch-major table.
func assignmentFromCells(cells [][]int) (Assignment, error) {
	a, err := NewAssignment(DefaultAssignmentKind, len(cells), len(cells[0]))
	if err != nil {
		return nil, err
	}
	for b, row := range cells {
		for part, n := range row {
			for ; n > 0; n-- {
				if err := a.Increment(b, part); err != nil {
					return nil, err
				}
			}
		}
	}
	return a, nil
}

// ringParameters is K=4, q=2, mu=1/2 with two rows per batch and four
// partitions, the instance used by the ring placement fixture.
func ringParameters(t *testing.T) Parameters {
	t.Helper()
	p, err := NewParameters(2, 4, 2, 1, 0.5, 4)
	if err != nil {
		t.Fatalf("ringParameters: %v", err)
	}
	return p
}

var ringCells = [][]int{{1, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 1, 1}, {1, 0, 0, 1}}
