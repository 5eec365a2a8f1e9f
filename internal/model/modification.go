package model

// Modification is one recorded system change: an application removed, a
// service disabled, a registry key rewritten.
type Modification struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	Target   string `json:"target"`
	Category string `json:"category"`
}

// Task lifecycle markers extracted from informational lines.
const (
	TaskStart    = "start"
	TaskComplete = "complete"
	TaskProgress = "progress"
)

// TaskDetail is a task lifecycle marker: a phase starting, finishing with
// a duration, or reporting incremental progress.
type TaskDetail struct {
	Kind            string  `json:"kind"`
	Name            string  `json:"name"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Count           int     `json:"count,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	Timestamp       string  `json:"timestamp,omitempty"`
}

// DurationSample is a single timing figure pulled from a log line,
// normalized to seconds.
type DurationSample struct {
	Label   string  `json:"label"`
	Seconds float64 `json:"seconds"`
}

// OperationCount is an "N items <verb>" tally pulled from a log line.
type OperationCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}
