// register.go wires the solver constructors into the sim package's
// registration variable (NewSolverFunc). This init() runs when any package
// imports sim/solver.
package solver

import "github.com/inference-sim/codedsim/sim"

func init() {
	sim.NewSolverFunc = New
}
