package model

// Severity buckets an error record for triage ordering.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities for sorting, most urgent first.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// SeverityFor maps a log level onto a triage bucket. Failures are high,
// everything else that reaches an error record is medium.
func SeverityFor(l Level) Severity {
	if l.IsFailure() {
		return SeverityHigh
	}
	return SeverityMedium
}

// ErrorRecord is one error or warning surfaced by a module run, tagged
// with the module it came from so global views can interleave records.
type ErrorRecord struct {
	Module    string   `json:"module"`
	Timestamp string   `json:"timestamp"`
	Level     Level    `json:"level"`
	Component string   `json:"component,omitempty"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
}
