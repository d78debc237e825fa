// register.go wires the assignment constructors into the sim package's
// registration variable (NewAssignmentFunc). This init() runs when any package
// imports sim/assignment, breaking the import cycle between sim/ (interface
// owner) and sim/assignment/ (implementation).
package assignment

import "github.com/inference-sim/codedsim/sim"

func init() {
	sim.NewAssignmentFunc = New
}
