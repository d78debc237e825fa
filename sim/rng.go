package sim

import (
	"fmt"
	"hash/fnv"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey, the same cached assignments
// and identical configuration MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem names ===

// SubsystemSolver returns the subsystem name for solver run r of an entry.
func SubsystemSolver(identifier string, run int) string {
	return fmt.Sprintf("solver/%s/%d", identifier, run)
}

// SubsystemRefine returns the subsystem name for refinement round n of run r.
func SubsystemRefine(identifier string, run, round int) string {
	return fmt.Sprintf("refine/%s/%d/%d", identifier, run, round)
}

// SubsystemTrial returns the subsystem name for trial i of run r, round n.
func SubsystemTrial(identifier string, run, round, trial int) string {
	return fmt.Sprintf("trial/%s/%d/%d/%d", identifier, run, round, trial)
}

// === PartitionedRNG ===

// PartitionedRNG derives deterministic, isolated seeds per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: Seed is a pure function and may be called from any
// goroutine; trial workers and solvers build their own *rand.Rand from it.
type PartitionedRNG struct {
	key SimulationKey
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key}
}

// Seed returns the derived seed for the named subsystem.
func (p *PartitionedRNG) Seed(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
