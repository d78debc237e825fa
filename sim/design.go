package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// BatchDesign maps batches to the servers that store them. Batch b is stored
// at the b-th mu*q-subset of servers in lexicographic order, so every server
// stores C(K-1, mu*q-1) batches.
//
// Thread-safety: read-only after construction; safe for concurrent readers.
type BatchDesign struct {
	numServers int
	servers    [][]int // batch -> servers, ascending
	batches    [][]int // server -> batches, ascending
}

// NewBatchDesign builds the design for p. Returns an error wrapping
// ErrInfeasible when mu*q is not an integer in [1, K] or the design has more
// than MaxBatches batches.
func NewBatchDesign(p Parameters) (*BatchDesign, error) {
	if !p.ServersPerBatchExact() || p.ServersPerBatch() > p.NumServers {
		return nil, fmt.Errorf("%s: mu*q = %v is not an integer in [1, %d]: %w",
			p.Identifier(), p.ServerStorage*float64(p.DecodingGroupSize), p.NumServers, ErrInfeasible)
	}
	if p.NumBatches() == 0 {
		return nil, fmt.Errorf("%s: C(%d, %d) batches exceed %d: %w",
			p.Identifier(), p.NumServers, p.ServersPerBatch(), MaxBatches, ErrInfeasible)
	}
	subsets := combin.Combinations(p.NumServers, p.ServersPerBatch())
	d := &BatchDesign{
		numServers: p.NumServers,
		servers:    subsets,
		batches:    make([][]int, p.NumServers),
	}
	for b, servers := range subsets {
		for _, k := range servers {
			d.batches[k] = append(d.batches[k], b)
		}
	}
	return d, nil
}

// NumBatches returns the number of batches in the design.
func (d *BatchDesign) NumBatches() int {
	return len(d.servers)
}

// NumServers returns the number of servers in the design.
func (d *BatchDesign) NumServers() int {
	return d.numServers
}

// Servers returns the servers storing batch b. The slice must not be modified.
func (d *BatchDesign) Servers(b int) []int {
	return d.servers[b]
}

// Batches returns the batches stored at server k. The slice must not be modified.
func (d *BatchDesign) Batches(k int) []int {
	return d.batches[k]
}

// BatchesAt returns the sorted union of the batches stored at the given
// servers. Duplicate servers have no effect.
func (d *BatchDesign) BatchesAt(servers []int) []int {
	seen := make([]bool, len(d.servers))
	var out []int
	for _, k := range servers {
		for _, b := range d.batches[k] {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	sort.Ints(out)
	return out
}
