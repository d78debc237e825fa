package solver

import (
	"math/rand"

	"github.com/inference-sim/codedsim/sim"
)

// coverageObjective counts uncovered partitions over a fixed sample of
// finished-server sets. Lower is better; it tracks the expected number of
// partitions no finished server holds, which drives communication load.
type coverageObjective struct {
	avail [][]bool // scenario -> batch -> stored at a finished server
	cover [][]int  // scenario -> partition -> rows in available batches
	value int      // total uncovered (scenario, partition) pairs
}

// newCoverageObjective samples scenarios sets of q finished servers and
// evaluates a against them.
func newCoverageObjective(p sim.Parameters, design *sim.BatchDesign, a sim.Assignment, rng *rand.Rand, scenarios int) *coverageObjective {
	o := &coverageObjective{
		avail: make([][]bool, scenarios),
		cover: make([][]int, scenarios),
	}
	for s := 0; s < scenarios; s++ {
		servers := rng.Perm(p.NumServers)[:p.DecodingGroupSize]
		o.avail[s] = make([]bool, design.NumBatches())
		o.cover[s] = make([]int, p.NumPartitions)
		cover := o.cover[s]
		for _, b := range design.BatchesAt(servers) {
			o.avail[s][b] = true
			a.ForEachNonZero(b, func(part, n int) {
				cover[part] += n
			})
		}
		for _, n := range o.cover[s] {
			if n == 0 {
				o.value++
			}
		}
	}
	return o
}

// delta returns the objective change of moving a row of p1 from b1 to b2 and
// a row of p2 from b2 to b1. p1 and p2 must differ.
func (o *coverageObjective) delta(b1, b2, p1, p2 int) int {
	d := 0
	for s := range o.avail {
		a1, a2 := o.avail[s][b1], o.avail[s][b2]
		switch {
		case a1 && !a2:
			d += loss(o.cover[s][p1]) + gain(o.cover[s][p2])
		case !a1 && a2:
			d += loss(o.cover[s][p2]) + gain(o.cover[s][p1])
		}
	}
	return d
}

// apply records the move evaluated by delta.
func (o *coverageObjective) apply(b1, b2, p1, p2, d int) {
	for s := range o.avail {
		a1, a2 := o.avail[s][b1], o.avail[s][b2]
		switch {
		case a1 && !a2:
			o.cover[s][p1]--
			o.cover[s][p2]++
		case !a1 && a2:
			o.cover[s][p2]--
			o.cover[s][p1]++
		}
	}
	o.value += d
}

// loss is the uncovered-count change when a partition with n available rows
// loses one.
func loss(n int) int {
	if n == 1 {
		return 1
	}
	return 0
}

// gain is the uncovered-count change when a partition with n available rows
// gains one.
func gain(n int) int {
	if n == 0 {
		return -1
	}
	return 0
}
