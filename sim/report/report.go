// Package report collects saved results across solvers and normalises them
// for comparison.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/liggitt/tabwriter"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/codedsim/sim"
)

// Row is one normalised entry of a Series.
type Row struct {
	Identifier string
	Parameters sim.Parameters
	Load       sim.Summary // (load + multicasts) / (source rows * N * unpartitioned load)
	Delay      sim.Summary // delay / computational delay
	Trials     int
}

// Series holds the rows found for one solver, in input order. Entries with
// no saved result are skipped.
type Series struct {
	Solver string
	Rows   []Row
}

// Collect reads the saved result of every (solver, parameters) pair from
// store. A missing result is logged and skipped; any other store error
// aborts collection.
func Collect(store sim.ResultStore, solvers []string, params []sim.Parameters) ([]Series, error) {
	out := make([]Series, 0, len(solvers))
	for _, solver := range solvers {
		s := Series{Solver: solver}
		for _, p := range params {
			r, err := store.LoadResult(solver, p)
			if errors.Is(err, sim.ErrNotFound) {
				logrus.Warnf("no result for %s with %s, skipping", p.Identifier(), solver)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("collecting %s/%s: %w", solver, p.Identifier(), err)
			}
			s.Rows = append(s.Rows, Normalize(r))
		}
		out = append(out, s)
	}
	return out, nil
}

// Normalize scales r's load by the unpartitioned coded load and its delay by
// the computational delay unit. When a denominator is zero the raw value is
// kept.
func Normalize(r *sim.Result) Row {
	p := r.Parameters
	row := Row{Identifier: r.Identifier, Parameters: p, Load: r.Load, Delay: r.Delay, Trials: len(r.Samples)}

	multicasts := float64(p.NumMulticasts())
	if denom := float64(p.NumSourceRows()*p.NumOutputs) * p.UnpartitionedLoad(); denom != 0 {
		row.Load = scale(r.Load, multicasts, denom)
	}
	if cd := p.ComputationalDelay(); cd != 0 {
		row.Delay = scale(r.Delay, 0, cd)
	}
	return row
}

func scale(s sim.Summary, offset, denom float64) sim.Summary {
	return sim.Summary{
		Mean: (s.Mean + offset) / denom,
		Min:  (s.Min + offset) / denom,
		Max:  (s.Max + offset) / denom,
	}
}

// Write prints one line per (identifier, solver) pair, grouped by
// identifier in first-seen order.
func Write(w io.Writer, series []Series) error {
	type cell struct {
		solver string
		row    Row
	}
	var order []string
	byID := make(map[string][]cell)
	for _, s := range series {
		for _, r := range s.Rows {
			if _, ok := byID[r.Identifier]; !ok {
				order = append(order, r.Identifier)
			}
			byID[r.Identifier] = append(byID[r.Identifier], cell{solver: s.Solver, row: r})
		}
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.RememberWidths)
	fmt.Fprintln(tw, "IDENTIFIER\tSOLVER\tT\tTRIALS\tLOAD MEAN\tLOAD MIN\tLOAD MAX\tDELAY MEAN\tDELAY MIN\tDELAY MAX")
	for _, id := range order {
		cells := byID[id]
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].row.Load.Mean < cells[j].row.Load.Mean })
		for _, c := range cells {
			r := c.row
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
				id, c.solver, r.Parameters.NumPartitions, r.Trials,
				r.Load.Mean, r.Load.Min, r.Load.Max, r.Delay.Mean, r.Delay.Min, r.Delay.Max)
		}
	}
	return tw.Flush()
}
