package eliza

// Trace records how one response was derived. It is plain data collected
// during Respond so the REPL and the debug log can show the keyword
// path without the engine doing any I/O itself.
type Trace struct {
	Input string
	Limit int

	// Words is the working sentence after filtering, clause trimming,
	// and word substitution.
	Words []string
	// Keystack holds the candidate keywords in the order they were
	// tried, highest precedence first.
	Keystack []string
	// Substitutions counts the in-place word replacements applied
	// during scanning.
	Substitutions int

	// Steps lists each keyword attempt and its outcome.
	Steps []TraceStep

	MemoryStored   string
	MemoryRecalled bool
	Response       string
}

// TraceStep is one keyword attempt during rule application.
type TraceStep struct {
	Keyword string
	Outcome string
}

func (t *Trace) step(keyword, outcome string) {
	t.Steps = append(t.Steps, TraceStep{Keyword: keyword, Outcome: outcome})
}
