package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inference-sim/codedsim/sim"
)

// Preset sweeps reproduce the two standard experiments: the partitioning
// sweep varies T at fixed K, q and mu; the load-delay sweep grows K at a
// fixed per-server workload.
const (
	PresetPartitioning = "partitioning"
	PresetLoadDelay    = "load-delay"
)

// partitionCounts are the T values of the partitioning sweep. Every value
// divides the 9000 coded rows.
var partitionCounts = []int{
	2, 3, 4, 5, 6, 8, 10, 12, 15, 20, 24, 25, 30, 40, 50, 60, 75, 100,
	120, 125, 150, 200, 250, 300, 375, 500, 600, 750, 1000, 1500, 3000,
}

// loadDelayServers are the K values of the load-delay sweep.
var loadDelayServers = []int{5, 8, 20, 50, 80, 125, 200}

// presets maps preset names to parameter list builders.
var presets = map[string]func() ([]sim.Parameters, error){
	PresetPartitioning: partitioningPreset,
	PresetLoadDelay:    loadDelayPreset,
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetParameters returns the parameter list of the named preset.
func PresetParameters(name string) ([]sim.Parameters, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(PresetNames(), ", "))
	}
	return build()
}

// partitioningPreset is K=9, q=6, N=6, mu=1/3 and 250 rows per batch over
// every T in partitionCounts.
func partitioningPreset() ([]sim.Parameters, error) {
	out := make([]sim.Parameters, 0, len(partitionCounts))
	for _, t := range partitionCounts {
		p, err := sim.NewParameters(250, 9, 6, 6, 1.0/3, t)
		if err != nil {
			return nil, fmt.Errorf("partitioning preset T=%d: %w", t, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// loadDelayPreset keeps 2000 rows per server and 10 rows per partition at
// code rate 2/3 with mu*q = 2.
func loadDelayPreset() ([]sim.Parameters, error) {
	out := make([]sim.Parameters, 0, len(loadDelayServers))
	for _, k := range loadDelayServers {
		p, err := sim.FixedComplexityParameters(2000, 10, k, 2.0/3, 2)
		if err != nil {
			return nil, fmt.Errorf("load-delay preset K=%d: %w", k, err)
		}
		out = append(out, p)
	}
	return out, nil
}
