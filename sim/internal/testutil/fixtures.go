// Package testutil provides shared test infrastructure for the simulator.
// It holds the reference-load fixtures and assertion helpers used across
// sim/ and its subpackage tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ReferenceLoads represents the structure of testdata/reference_loads.json.
type ReferenceLoads struct {
	Cases []ReferenceCase `json:"cases"`
}

// ReferenceCase is a small instance with a hand-placed assignment whose
// expected load and delay can be derived in closed form.
type ReferenceCase struct {
	Name       string          `json:"name"`
	Parameters CaseParameters  `json:"parameters"`
	Stragglers int             `json:"stragglers"`
	Cells      [][]int         `json:"cells"` // rows of batch b in partition p
	Expected   ExpectedMetrics `json:"expected"`
}

// CaseParameters mirrors the fields of sim.Parameters.
type CaseParameters struct {
	RowsPerBatch      int     `json:"rows_per_batch"`
	NumServers        int     `json:"num_servers"`
	DecodingGroupSize int     `json:"decoding_group_size"`
	NumOutputs        int     `json:"num_outputs"`
	ServerStorage     float64 `json:"server_storage"`
	NumPartitions     int     `json:"num_partitions"`
}

// ExpectedMetrics holds the exact expectations of a case.
type ExpectedMetrics struct {
	LoadMean  float64 `json:"load_mean"`
	DelayMean float64 `json:"delay_mean"`
	Tolerance float64 `json:"tolerance"` // absolute, for sampled means
}

// LoadReferenceLoads loads the fixtures from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadReferenceLoads(t *testing.T) *ReferenceLoads {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "reference_loads.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read reference loads: %v", err)
	}

	var refs ReferenceLoads
	if err := json.Unmarshal(data, &refs); err != nil {
		t.Fatalf("Failed to parse reference loads: %v", err)
	}
	return &refs
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertFloat64Near compares two float64 values with absolute tolerance.
func AssertFloat64Near(t *testing.T, name string, want, got, absTol float64) {
	t.Helper()
	if math.Abs(want-got) > absTol {
		t.Errorf("%s: got %v, want %v (absTol=%v)", name, got, want, absTol)
	}
}
