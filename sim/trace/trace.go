package trace

// TraceLevel controls the verbosity of search tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelMoves captures every applied heuristic move.
	TraceLevelMoves TraceLevel = "moves"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelMoves: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SearchTrace collects move records during heuristic searches.
//
// Thread-safety: NOT thread-safe. Searches run one at a time per trace.
type SearchTrace struct {
	Config TraceConfig
	Moves  []MoveRecord
	// Searches counts completed searches, including those without moves.
	Searches int
}

// NewSearchTrace creates a SearchTrace ready for recording.
func NewSearchTrace(config TraceConfig) *SearchTrace {
	return &SearchTrace{
		Config: config,
		Moves:  make([]MoveRecord, 0),
	}
}

// Enabled reports whether moves should be recorded. Safe on a nil trace.
func (st *SearchTrace) Enabled() bool {
	return st != nil && st.Config.Level == TraceLevelMoves
}

// RecordMove appends a move record.
func (st *SearchTrace) RecordMove(record MoveRecord) {
	st.Moves = append(st.Moves, record)
}

// EndSearch marks the end of one search. Safe on a nil trace.
func (st *SearchTrace) EndSearch() {
	if st != nil {
		st.Searches++
	}
}
