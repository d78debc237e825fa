// Package solver implements sim.Solver.
//
//   - RandomSolver draws every row's batch uniformly among batches with spare
//     capacity.
//   - HeuristicSolver starts from a round-robin placement and applies
//     improving row swaps.
//   - HybridSolver refines a random placement with a bounded heuristic search.
//
// Every solver checks feasibility before constructing anything and returns
// an error wrapping sim.ErrInfeasible when no placement exists.
package solver
