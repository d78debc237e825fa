package sim

import "errors"

// Sentinel errors. Callers wrap them with fmt.Errorf("...: %w", err) and
// test with errors.Is.
var (
	// ErrNotFound is returned when a persisted assignment or result does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInfeasible is returned when no valid assignment exists for the parameters.
	ErrInfeasible = errors.New("infeasible parameters")

	// ErrIndex is returned when a batch or partition index is out of range.
	ErrIndex = errors.New("index out of range")

	// ErrUnderflow is returned when a decrement would drive a cell below zero.
	ErrUnderflow = errors.New("count underflow")

	// ErrStorageIO is returned for persistence failures other than a miss.
	ErrStorageIO = errors.New("storage I/O failure")

	// ErrCorrupt is returned when a persisted artifact exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt artifact")
)
