package returns

// Diagnostic is a structured, non-fatal condition met during a calculation,
// tagged with the source location of the data that caused it.
type Diagnostic struct {
	Source  string // e.g. "ledger.jsonl:42", empty for call-level conditions
	Message string
}

func (d Diagnostic) String() string {
	if d.Source == "" {
		return d.Message
	}
	return d.Source + ": " + d.Message
}

// DiagnosticLog accumulates de-duplicated diagnostics. It is keyed by
// (source, message) so a failure at the same location reported across
// multiple calculate calls appears once.
type DiagnosticLog struct {
	diags []Diagnostic
	seen  map[Diagnostic]struct{}
}

// NewDiagnosticLog returns an empty log.
func NewDiagnosticLog() *DiagnosticLog {
	return &DiagnosticLog{seen: make(map[Diagnostic]struct{})}
}

// Add records a diagnostic unless the same source/message pair was already
// recorded.
func (l *DiagnosticLog) Add(source, message string) {
	d := Diagnostic{Source: source, Message: message}
	if _, ok := l.seen[d]; ok {
		return
	}
	l.seen[d] = struct{}{}
	l.diags = append(l.diags, d)
}

// All returns the recorded diagnostics in insertion order.
func (l *DiagnosticLog) All() []Diagnostic {
	return l.diags
}

// Len returns the number of distinct diagnostics recorded.
func (l *DiagnosticLog) Len() int { return len(l.diags) }
