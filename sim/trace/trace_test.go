package trace

import (
	"testing"
)

func TestSearchTrace_RecordMove_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for moves
	st := NewSearchTrace(TraceConfig{Level: TraceLevelMoves})

	// WHEN a move record is recorded
	st.RecordMove(MoveRecord{Identifier: "p1", Iteration: 3, BatchA: 0, BatchB: 2, PartitionA: 1, PartitionB: 4, Before: 10, After: 7})

	// THEN the trace contains one move record with correct data
	if len(st.Moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(st.Moves))
	}
	if st.Moves[0].BatchB != 2 || st.Moves[0].PartitionB != 4 {
		t.Errorf("unexpected record %+v", st.Moves[0])
	}
	if st.Moves[0].Improvement() != 3 {
		t.Errorf("expected improvement 3, got %d", st.Moves[0].Improvement())
	}
}

func TestSearchTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSearchTrace(TraceConfig{Level: TraceLevelMoves})

	// WHEN multiple records are added
	for i := 0; i < 3; i++ {
		st.RecordMove(MoveRecord{Identifier: "p1", Iteration: i})
	}

	// THEN order is preserved
	for i, m := range st.Moves {
		if m.Iteration != i {
			t.Errorf("move %d: iteration %d", i, m.Iteration)
		}
	}
}

func TestSearchTrace_Enabled(t *testing.T) {
	var nilTrace *SearchTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must not be enabled")
	}
	if NewSearchTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must not be enabled")
	}
	if !NewSearchTrace(TraceConfig{Level: TraceLevelMoves}).Enabled() {
		t.Error("level moves must be enabled")
	}

	// EndSearch on nil is a no-op
	nilTrace.EndSearch()
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"moves", true},
		{"decisions", false},
		{"MOVES", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
