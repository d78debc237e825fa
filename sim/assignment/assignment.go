package assignment

import (
	"fmt"

	"github.com/inference-sim/codedsim/sim"
)

// MaxDenseCells bounds the table a Dense assignment may allocate. Larger
// shapes need the sparse kind.
const MaxDenseCells = 1 << 28

// New returns an all-zero assignment of the given kind ("dense" or "sparse").
func New(kind string, batches, partitions int) (sim.Assignment, error) {
	if batches <= 0 || partitions <= 0 {
		return nil, fmt.Errorf("assignment needs positive dimensions, got %dx%d", batches, partitions)
	}
	switch kind {
	case "", "dense":
		if partitions > MaxDenseCells/batches {
			return nil, fmt.Errorf("dense %dx%d assignment exceeds %d cells; use the sparse kind", batches, partitions, MaxDenseCells)
		}
		return NewDense(batches, partitions), nil
	case "sparse":
		return NewSparse(batches, partitions), nil
	}
	return nil, fmt.Errorf("unknown assignment kind %q", kind)
}

// totals tracks running row sums shared by both implementations.
type totals struct {
	batchRows []int
	partRows  []int
}

func newTotals(batches, partitions int) totals {
	return totals{batchRows: make([]int, batches), partRows: make([]int, partitions)}
}

func (t *totals) check(batch, partition int) error {
	if batch < 0 || batch >= len(t.batchRows) {
		return fmt.Errorf("batch %d not in [0, %d): %w", batch, len(t.batchRows), sim.ErrIndex)
	}
	if partition < 0 || partition >= len(t.partRows) {
		return fmt.Errorf("partition %d not in [0, %d): %w", partition, len(t.partRows), sim.ErrIndex)
	}
	return nil
}

func (t *totals) add(batch, partition, delta int) {
	t.batchRows[batch] += delta
	t.partRows[partition] += delta
}

func (t *totals) NumBatches() int    { return len(t.batchRows) }
func (t *totals) NumPartitions() int { return len(t.partRows) }

func (t *totals) BatchRows(batch int) int {
	if batch < 0 || batch >= len(t.batchRows) {
		return 0
	}
	return t.batchRows[batch]
}

func (t *totals) PartitionRows(partition int) int {
	if partition < 0 || partition >= len(t.partRows) {
		return 0
	}
	return t.partRows[partition]
}

func (t totals) clone() totals {
	return totals{
		batchRows: append([]int(nil), t.batchRows...),
		partRows:  append([]int(nil), t.partRows...),
	}
}

func underflow(batch, partition int) error {
	return fmt.Errorf("cell (%d, %d) is already zero: %w", batch, partition, sim.ErrUnderflow)
}
