package sim

// ResultStore persists assignments and trial tables. Implementations return
// errors wrapping ErrNotFound for misses, ErrCorrupt for artifacts that exist
// but do not decode, and ErrStorageIO for other failures.
type ResultStore interface {
	// LoadAssignment returns the assignment saved under (solver, key),
	// constructed with the given assignment kind.
	LoadAssignment(solver, key, kind string) (Assignment, error)

	// SaveAssignment stores a under (solver, key), replacing any previous one.
	SaveAssignment(solver, key string, a Assignment) error

	// SaveResult stores the per-trial table of r under (r.Solver, r.Identifier).
	SaveResult(r *Result) error

	// LoadResult reads the table saved for (solver, p) and summarises it.
	LoadResult(solver string, p Parameters) (*Result, error)
}
