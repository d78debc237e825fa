package assignment

import (
	"sort"

	"github.com/inference-sim/codedsim/sim"
)

// Sparse keeps only the non-zero cells of every batch.
type Sparse struct {
	totals
	rows []map[int]int // batch -> partition -> count (> 0)
}

var _ sim.Assignment = (*Sparse)(nil)

// NewSparse returns an all-zero Sparse assignment.
func NewSparse(batches, partitions int) *Sparse {
	rows := make([]map[int]int, batches)
	for b := range rows {
		rows[b] = make(map[int]int)
	}
	return &Sparse{totals: newTotals(batches, partitions), rows: rows}
}

// Count implements sim.Assignment.
func (s *Sparse) Count(batch, partition int) int {
	if s.check(batch, partition) != nil {
		return 0
	}
	return s.rows[batch][partition]
}

// Increment implements sim.Assignment.
func (s *Sparse) Increment(batch, partition int) error {
	if err := s.check(batch, partition); err != nil {
		return err
	}
	s.rows[batch][partition]++
	s.add(batch, partition, 1)
	return nil
}

// Decrement implements sim.Assignment. Cells that reach zero are removed.
func (s *Sparse) Decrement(batch, partition int) error {
	if err := s.check(batch, partition); err != nil {
		return err
	}
	n := s.rows[batch][partition]
	if n == 0 {
		return underflow(batch, partition)
	}
	if n == 1 {
		delete(s.rows[batch], partition)
	} else {
		s.rows[batch][partition] = n - 1
	}
	s.add(batch, partition, -1)
	return nil
}

// BatchUnion implements sim.Assignment. Out-of-range batch indices are ignored.
func (s *Sparse) BatchUnion(batches []int) []int {
	seen := make(map[int]struct{})
	for _, b := range batches {
		if b < 0 || b >= len(s.rows) {
			continue
		}
		for p := range s.rows[b] {
			seen[p] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// ForEachNonZero implements sim.Assignment.
func (s *Sparse) ForEachNonZero(batch int, fn func(partition, count int)) {
	if batch < 0 || batch >= len(s.rows) {
		return
	}
	row := s.rows[batch]
	parts := make([]int, 0, len(row))
	for p := range row {
		parts = append(parts, p)
	}
	sort.Ints(parts)
	for _, p := range parts {
		fn(p, row[p])
	}
}

// Clone implements sim.Assignment.
func (s *Sparse) Clone() sim.Assignment {
	rows := make([]map[int]int, len(s.rows))
	for b, row := range s.rows {
		rows[b] = make(map[int]int, len(row))
		for p, n := range row {
			rows[b][p] = n
		}
	}
	return &Sparse{totals: s.totals.clone(), rows: rows}
}

// Cells implements sim.Assignment.
func (s *Sparse) Cells() [][]int {
	out := make([][]int, len(s.rows))
	for b, row := range s.rows {
		out[b] = make([]int, len(s.partRows))
		for p, n := range row {
			out[b][p] = n
		}
	}
	return out
}
