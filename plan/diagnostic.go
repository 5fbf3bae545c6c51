package plan

// Severity classifies a diagnostic.
type Severity int

// The diagnostic severities. Fatal conditions are returned as errors;
// warnings accompany a successful build.
const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// A Diagnostic is a non-fatal finding recorded while planning.
type Diagnostic struct {
	Severity Severity
	Message  string
}
