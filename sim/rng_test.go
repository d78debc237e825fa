package sim

import (
	"math"
	"math/rand"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	name := SubsystemSolver("b2_K4_q2_N1_mu0.5_T4", 0)
	rng1 := rand.New(rand.NewSource(NewPartitionedRNG(NewSimulationKey(42)).Seed(name)))
	rng2 := rand.New(rand.NewSource(NewPartitionedRNG(NewSimulationKey(42)).Seed(name)))

	for i := 0; i < 3; i++ {
		v1, v2 := rng1.Float64(), rng2.Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Draws in one subsystem's stream don't affect another's
	id := "b2_K4_q2_N1_mu0.5_T4"
	p := NewPartitionedRNG(NewSimulationKey(42))
	want := rand.New(rand.NewSource(p.Seed(SubsystemRefine(id, 0, 1)))).Int63()

	solver := rand.New(rand.NewSource(p.Seed(SubsystemSolver(id, 0))))
	for i := 0; i < 100; i++ {
		solver.Int63()
	}
	got := rand.New(rand.NewSource(p.Seed(SubsystemRefine(id, 0, 1)))).Int63()
	if got != want {
		t.Errorf("refine stream perturbed by solver draws: got %d, want %d", got, want)
	}
	if p.Seed(SubsystemRefine(id, 0, 1)) == p.Seed(SubsystemSolver(id, 0)) {
		t.Error("refine and solver subsystems share a seed")
	}
}

func TestPartitionedRNG_SeedFormula(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	name := "solver/x/0"
	if got, want := rng.Seed(name), int64(42)^fnv1a64(name); got != want {
		t.Errorf("Seed(%q) = %d, want %d", name, got, want)
	}
}

func TestPartitionedRNG_DifferentKeysDiverge(t *testing.T) {
	name := SubsystemSolver("x", 0)
	a := NewPartitionedRNG(NewSimulationKey(1)).Seed(name)
	b := NewPartitionedRNG(NewSimulationKey(2)).Seed(name)
	if a == b {
		t.Errorf("seeds for keys 1 and 2 collide: %d", a)
	}
}

func TestSubsystemNames_Distinct(t *testing.T) {
	// Every run, round and trial draws from its own stream.
	seen := map[string]bool{}
	names := []string{
		SubsystemSolver("x", 0),
		SubsystemSolver("x", 1),
		SubsystemRefine("x", 0, 1),
		SubsystemRefine("x", 1, 1),
		SubsystemTrial("x", 0, 0, 0),
		SubsystemTrial("x", 0, 0, 1),
		SubsystemTrial("x", 0, 1, 0),
		SubsystemTrial("x", 1, 0, 0),
		SubsystemTrial("y", 0, 0, 0),
	}
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate subsystem name %q", n)
		}
		seen[n] = true
	}
}

func TestFnv1a64_Deterministic(t *testing.T) {
	h1 := fnv1a64("trial/x/0/0/0")
	h2 := fnv1a64("trial/x/0/0/0")
	if h1 != h2 {
		t.Errorf("fnv1a64 not deterministic: %d != %d", h1, h2)
	}
}

func BenchmarkPartitionedRNG_Seed(b *testing.B) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rng.Seed(SubsystemTrial("b250_K9_q6_N6_mu0.3333333333333333_T10", 0, 0, i))
	}
}
