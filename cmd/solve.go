package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/codedsim/sim"
)

// solveCmd constructs, verifies and saves one assignment without simulating
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Construct and verify one assignment",
	Run: func(cmd *cobra.Command, args []string) {
		p, err := flagParameters()
		if err != nil {
			logrus.Fatalf("Invalid parameters: %v", err)
		}
		st := searchTrace()
		s := mustSolver(solverName, st)

		start := time.Now()
		a, err := solveAndSave(s, p, openStore(resultsDir))
		if err != nil {
			logrus.Fatalf("Solving %s failed: %v", p.Identifier(), err)
		}
		printAssignment(os.Stdout, s.Name(), p, a, time.Since(start))
		printTrace(os.Stdout, st)
	},
}

// solveAndSave solves p with the run-0 seed the simulator would use, checks
// the totals and saves the assignment when rs is set.
func solveAndSave(s sim.Solver, p sim.Parameters, rs sim.ResultStore) (sim.Assignment, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	a, err := s.Solve(p, rng.Seed(sim.SubsystemSolver(p.Identifier(), 0)))
	if err != nil {
		return nil, err
	}
	if err := sim.VerifyAssignment(a, p); err != nil {
		return nil, fmt.Errorf("solver %s produced an invalid assignment: %w", s.Name(), err)
	}
	if rs != nil {
		if err := rs.SaveAssignment(s.Name(), p.Identifier(), a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// printAssignment writes the shape and per-batch partition spread of a.
func printAssignment(w io.Writer, solverName string, p sim.Parameters, a sim.Assignment, elapsed time.Duration) {
	fmt.Fprintf(w, "=== %s (%s) ===\n", p.Identifier(), solverName)
	fmt.Fprintf(w, "batches: %d, partitions: %d, rows per batch: %d, solved in %v\n",
		a.NumBatches(), a.NumPartitions(), p.RowsPerBatch, elapsed.Round(time.Millisecond))
	spread := make([]float64, a.NumBatches())
	for b := range spread {
		spread[b] = float64(len(a.BatchUnion([]int{b})))
	}
	s := sim.Summarize(spread)
	fmt.Fprintf(w, "distinct partitions per batch: mean=%.2f min=%.0f max=%.0f\n", s.Mean, s.Min, s.Max)
}

func init() {
	rootCmd.AddCommand(solveCmd)
}
