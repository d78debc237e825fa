package sim

import "fmt"

// Assignment counts how many coded rows of each partition are stored in each
// batch. Cells are addressed by (batch, partition) and never go negative.
//
// Mutation is owned by the constructing solver. Once handed to the Simulator
// an Assignment is read concurrently by trial workers and must not be
// mutated until the trial batch completes.
type Assignment interface {
	NumBatches() int
	NumPartitions() int

	// Count returns the cell value. Out-of-range indices return 0.
	Count(batch, partition int) int

	// Increment adds one row of partition to batch. It does not enforce the
	// batch or partition totals; solvers stop before violating them.
	Increment(batch, partition int) error

	// Decrement removes one row of partition from batch. A zero cell is left
	// untouched and ErrUnderflow is returned.
	Decrement(batch, partition int) error

	// BatchUnion returns, in ascending order, the partitions with at least one
	// row in the given batches. Duplicate batch indices have no effect.
	BatchUnion(batches []int) []int

	// ForEachNonZero calls fn for every non-zero cell of batch in ascending
	// partition order. Out-of-range batches have no cells.
	ForEachNonZero(batch int, fn func(partition, count int))

	// BatchRows returns the number of rows stored in batch.
	BatchRows(batch int) int

	// PartitionRows returns the number of rows of partition over all batches.
	PartitionRows(partition int) int

	// Clone returns an independent copy.
	Clone() Assignment

	// Cells returns a batch-major copy of the full table. It allocates
	// batches x partitions ints whatever the representation.
	Cells() [][]int
}

// NewAssignmentFunc constructs an empty Assignment of the given kind. Set by
// sim/assignment's init(). Production code imports sim/assignment directly.
var NewAssignmentFunc func(kind string, batches, partitions int) (Assignment, error)

// DefaultAssignmentKind is used when no kind is configured.
const DefaultAssignmentKind = "dense"

// ValidAssignmentKinds is the set of recognized assignment implementations.
var ValidAssignmentKinds = map[string]bool{"": true, "dense": true, "sparse": true}

// NewAssignment constructs an all-zero Assignment of the given kind.
func NewAssignment(kind string, batches, partitions int) (Assignment, error) {
	if NewAssignmentFunc == nil {
		panic("NewAssignmentFunc not registered: import sim/assignment to register it " +
			"(add: import _ \"github.com/inference-sim/codedsim/sim/assignment\")")
	}
	if !ValidAssignmentKinds[kind] {
		return nil, fmt.Errorf("unknown assignment kind %q; valid: dense, sparse", kind)
	}
	if kind == "" {
		kind = DefaultAssignmentKind
	}
	return NewAssignmentFunc(kind, batches, partitions)
}

// VerifyAssignment checks that a matches the shape of p, that every batch
// holds exactly RowsPerBatch rows and that every partition holds exactly
// RowsPerPartition rows. Returns an error naming the first violation.
func VerifyAssignment(a Assignment, p Parameters) error {
	if a.NumBatches() != p.NumBatches() || a.NumPartitions() != p.NumPartitions {
		return fmt.Errorf("assignment shape %dx%d does not match %s (%dx%d)",
			a.NumBatches(), a.NumPartitions(), p.Identifier(), p.NumBatches(), p.NumPartitions)
	}
	for b := 0; b < a.NumBatches(); b++ {
		if got := a.BatchRows(b); got != p.RowsPerBatch {
			return fmt.Errorf("batch %d holds %d rows, want %d", b, got, p.RowsPerBatch)
		}
	}
	for q := 0; q < a.NumPartitions(); q++ {
		if got, want := a.PartitionRows(q), p.RowsPerPartition(q); got != want {
			return fmt.Errorf("partition %d holds %d rows, want %d", q, got, want)
		}
	}
	return nil
}
