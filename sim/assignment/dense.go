package assignment

import "github.com/inference-sim/codedsim/sim"

// Dense is a row-major batch-by-partition table.
type Dense struct {
	totals
	cells []int
}

var _ sim.Assignment = (*Dense)(nil)

// NewDense returns an all-zero Dense assignment.
func NewDense(batches, partitions int) *Dense {
	return &Dense{
		totals: newTotals(batches, partitions),
		cells:  make([]int, batches*partitions),
	}
}

func (d *Dense) index(batch, partition int) int {
	return batch*len(d.partRows) + partition
}

// Count implements sim.Assignment.
func (d *Dense) Count(batch, partition int) int {
	if d.check(batch, partition) != nil {
		return 0
	}
	return d.cells[d.index(batch, partition)]
}

// Increment implements sim.Assignment.
func (d *Dense) Increment(batch, partition int) error {
	if err := d.check(batch, partition); err != nil {
		return err
	}
	d.cells[d.index(batch, partition)]++
	d.add(batch, partition, 1)
	return nil
}

// Decrement implements sim.Assignment.
func (d *Dense) Decrement(batch, partition int) error {
	if err := d.check(batch, partition); err != nil {
		return err
	}
	i := d.index(batch, partition)
	if d.cells[i] == 0 {
		return underflow(batch, partition)
	}
	d.cells[i]--
	d.add(batch, partition, -1)
	return nil
}

// BatchUnion implements sim.Assignment. Out-of-range batch indices are ignored.
func (d *Dense) BatchUnion(batches []int) []int {
	np := len(d.partRows)
	seen := make([]bool, np)
	for _, b := range batches {
		if b < 0 || b >= len(d.batchRows) {
			continue
		}
		row := d.cells[b*np : (b+1)*np]
		for p, n := range row {
			if n > 0 {
				seen[p] = true
			}
		}
	}
	var out []int
	for p, ok := range seen {
		if ok {
			out = append(out, p)
		}
	}
	return out
}

// ForEachNonZero implements sim.Assignment.
func (d *Dense) ForEachNonZero(batch int, fn func(partition, count int)) {
	if batch < 0 || batch >= len(d.batchRows) {
		return
	}
	np := len(d.partRows)
	for p, n := range d.cells[batch*np : (batch+1)*np] {
		if n > 0 {
			fn(p, n)
		}
	}
}

// Clone implements sim.Assignment.
func (d *Dense) Clone() sim.Assignment {
	return &Dense{totals: d.totals.clone(), cells: append([]int(nil), d.cells...)}
}

// Cells implements sim.Assignment.
func (d *Dense) Cells() [][]int {
	np := len(d.partRows)
	out := make([][]int, len(d.batchRows))
	for b := range out {
		out[b] = append([]int(nil), d.cells[b*np:(b+1)*np]...)
	}
	return out
}
