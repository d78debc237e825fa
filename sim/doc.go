// Package sim provides the core Monte-Carlo engine for evaluating coded data
// placements across batches stored on straggling servers.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - params.go: problem instance (K servers, decoding group q, storage mu, T partitions)
//   - design.go: which servers store which batch
//   - assignment.go: the (batch, partition) counting structure and its invariants
//   - simulator.go: assignment caching, trial batches and parameter sweeps
//
// # Architecture
//
// The sim package defines interfaces and shared types; implementations live in
// sub-packages:
//   - sim/assignment/: dense and sparse Assignment implementations and their codec
//   - sim/solver/: random, heuristic and hybrid solvers
//   - sim/store/: directory-backed ResultStore
//   - sim/metrics/: Prometheus MetricsCollector
//   - sim/trace/: heuristic search trace
//   - sim/report/: normalised comparison series across solvers
//
// Sub-packages register their implementations via init() functions that set
// package-level factory variables (NewAssignmentFunc, NewSolverFunc).
//
// # Key Interfaces
//
//   - Assignment: increment, decrement and the BatchUnion coverage query
//   - Solver / Refiner: construct or improve an Assignment
//   - Scorer: turn covered partitions into load and delay
//   - ResultStore: persist assignments and per-trial tables
//   - MetricsCollector: sweep instrumentation
package sim
