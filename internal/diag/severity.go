package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevHint marks faded-out findings such as unused labels.
	SevHint Severity = iota
	// SevInfo is for informational diagnostics.
	SevInfo
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevHint:
		return "HINT"
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// LSP returns the DiagnosticSeverity value used on the wire (1 = error ... 4 = hint).
func (s Severity) LSP() int {
	switch s {
	case SevError:
		return 1
	case SevWarning:
		return 2
	case SevInfo:
		return 3
	default:
		return 4
	}
}
