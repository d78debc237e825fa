package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/codedsim/sim"
)

// testdataPath resolves a file under the repository's testdata directory.
func testdataPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "testdata", name)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSweepConfig_Testdata(t *testing.T) {
	// GIVEN the sample sweep
	cfg, err := LoadSweepConfig(testdataPath(t, "sweep_small.yaml"))
	require.NoError(t, err)

	// THEN every field is decoded
	assert.Equal(t, "heuristic", cfg.Solver)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 200, cfg.Trials)
	assert.Equal(t, 2, cfg.Runs)
	require.Len(t, cfg.Parameters, 3)
	assert.Equal(t, "b2_K4_q2_N1_mu0.5_T4", cfg.Parameters[0].Identifier())
	assert.Equal(t, 500, cfg.Heuristic.MaxIterations)
	assert.Nil(t, cfg.Stragglers)

	sc := cfg.SimulatorConfig()
	assert.Equal(t, sim.DefaultStragglers, sc.NumStragglers)
	assert.True(t, sc.Persist)
	assert.Equal(t, 16, cfg.SolverConfig(nil).Scenarios)
}

func TestLoadSweepConfig_RejectsUnknownField(t *testing.T) {
	// GIVEN a typo in a parameter field
	path := writeConfig(t, `
trials: 10
parameters:
  - {rows_per_batch: 2, num_server: 4, decoding_group_size: 2, num_outputs: 1, server_storage: 0.5, num_partitions: 4}
`)
	// WHEN loaded THEN strict decoding fails
	_, err := LoadSweepConfig(path)
	assert.Error(t, err)
}

func TestLoadSweepConfig_DefaultsAndPreset(t *testing.T) {
	path := writeConfig(t, `
trials: 10
stragglers: 0
preset: partitioning
parameters:
  - {rows_per_batch: 2, num_servers: 4, decoding_group_size: 2, num_outputs: 1, server_storage: 0.5, num_partitions: 4}
`)
	cfg, err := LoadSweepConfig(path)
	require.NoError(t, err)

	// empty solver selects random; preset entries come first
	assert.Equal(t, "random", cfg.Solver)
	assert.Len(t, cfg.Parameters, len(partitionCounts)+1)
	assert.Equal(t, 4, cfg.Parameters[len(cfg.Parameters)-1].NumServers)
	// explicit zero stragglers is kept
	assert.Equal(t, 0, cfg.SimulatorConfig().NumStragglers)
}

func TestSweepConfig_Validate(t *testing.T) {
	valid := func() *SweepConfig {
		p, _ := sim.NewParameters(2, 4, 2, 1, 0.5, 4)
		return &SweepConfig{Solver: "random", Trials: 10, Parameters: []sim.Parameters{p}}
	}
	negative := -1
	tests := []struct {
		name   string
		mutate func(c *SweepConfig)
	}{
		{"unknown solver", func(c *SweepConfig) { c.Solver = "genetic" }},
		{"unknown assignment", func(c *SweepConfig) { c.Assignment = "bitmap" }},
		{"zero trials", func(c *SweepConfig) { c.Trials = 0 }},
		{"negative runs", func(c *SweepConfig) { c.Runs = -1 }},
		{"negative stragglers", func(c *SweepConfig) { c.Stragglers = &negative }},
		{"negative workers", func(c *SweepConfig) { c.Workers = -2 }},
		{"no parameters", func(c *SweepConfig) { c.Parameters = nil }},
		{"invalid parameters", func(c *SweepConfig) { c.Parameters[0].NumOutputs = 0 }},
	}
	assert.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestPresets(t *testing.T) {
	// GIVEN every preset
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			params, err := PresetParameters(name)
			require.NoError(t, err)
			require.NotEmpty(t, params)

			// THEN every entry has a batch design and distinct identifiers
			seen := map[string]bool{}
			for _, p := range params {
				_, err := sim.NewBatchDesign(p)
				assert.NoError(t, err, p.Identifier())
				assert.False(t, seen[p.Identifier()], "duplicate %s", p.Identifier())
				seen[p.Identifier()] = true
			}
		})
	}
	_, err := PresetParameters("nope")
	assert.Error(t, err)
}

func TestPartitioningPreset_DividesCodedRows(t *testing.T) {
	params, err := PresetParameters(PresetPartitioning)
	require.NoError(t, err)
	for _, p := range params {
		assert.Zero(t, p.NumCodedRows()%p.NumPartitions, p.Identifier())
	}
}
