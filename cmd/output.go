package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/inference-sim/codedsim/sim"
	"github.com/inference-sim/codedsim/sim/report"
	"github.com/inference-sim/codedsim/sim/trace"
)

// printResult writes the raw and normalised summaries of one entry.
func printResult(w io.Writer, res *sim.Result) {
	row := report.Normalize(res)
	fmt.Fprintf(w, "=== %s (%s) ===\n", res.Identifier, res.Solver)
	fmt.Fprintf(w, "trials: %d x %d runs\n", res.NumTrials, res.NumRuns)
	fmt.Fprintf(w, "load:   mean=%.4f min=%.4f max=%.4f  normalised mean=%.4f\n",
		res.Load.Mean, res.Load.Min, res.Load.Max, row.Load.Mean)
	fmt.Fprintf(w, "delay:  mean=%.4f min=%.4f max=%.4f  normalised mean=%.4f\n",
		res.Delay.Mean, res.Delay.Min, res.Delay.Max, row.Delay.Mean)
	fmt.Fprintf(w, "encode: mean=%.4f  reduce: mean=%.4f\n", res.Encode.Mean, res.Reduce.Mean)
}

// printSweep writes the normalised table of a finished sweep followed by a
// status line, red when any entry failed.
func printSweep(w io.Writer, rs *sim.ResultSet) error {
	series := report.Series{Solver: rs.Name}
	for _, r := range rs.Results {
		if r.Err == nil {
			series.Rows = append(series.Rows, report.Normalize(r))
		}
	}
	if err := report.Write(w, []report.Series{series}); err != nil {
		return err
	}
	status := color.New(color.FgGreen)
	if len(rs.Failed()) > 0 {
		status = color.New(color.FgRed)
	}
	_, err := status.Fprintln(w, describe(rs))
	for _, r := range rs.Failed() {
		fmt.Fprintf(w, "  %s: %v\n", r.Identifier, r.Err)
	}
	return err
}

// printTrace writes the heuristic move summary when tracing was enabled.
func printTrace(w io.Writer, st *trace.SearchTrace) {
	if !st.Enabled() {
		return
	}
	sum := trace.Summarize(st)
	fmt.Fprintf(w, "=== Search Trace ===\n")
	fmt.Fprintf(w, "searches: %d, moves: %d, total improvement: %d, mean: %.2f, max: %d\n",
		sum.Searches, sum.TotalMoves, sum.TotalImprovement, sum.MeanImprovement, sum.MaxImprovement)
	ids := make([]string, 0, len(sum.MovesPerSearch))
	for id := range sum.MovesPerSearch {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s: %d moves\n", id, sum.MovesPerSearch[id])
	}
}
