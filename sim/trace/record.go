// Package trace provides move-trace recording for heuristic placement search.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// MoveRecord captures one applied swap: a row of PartitionA moves from
// BatchA to BatchB and a row of PartitionB moves back from BatchB to BatchA.
type MoveRecord struct {
	Identifier string // parameters the search ran for
	Iteration  int    // candidate index at which the move was applied
	BatchA     int
	BatchB     int
	PartitionA int
	PartitionB int
	Before     int // objective before the move
	After      int // objective after the move (< Before)
}

// Improvement returns Before - After.
func (m MoveRecord) Improvement() int {
	return m.Before - m.After
}
