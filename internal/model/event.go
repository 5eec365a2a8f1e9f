package model

import "strings"

// Level is the normalized severity tag carried by a structured log line.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarn    Level = "WARN"
	LevelError   Level = "ERROR"
	LevelFailed  Level = "FAILED"
	LevelDebug   Level = "DEBUG"
)

// ParseLevel normalizes a raw level token ("warning", "Error", …).
// Unknown tokens are returned uppercased so they still count as structured
// entries without being folded into a known bucket.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO", "INFORMATION":
		return LevelInfo
	case "SUCCESS", "OK":
		return LevelSuccess
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "ERR":
		return LevelError
	case "FAILED", "FAIL", "FAILURE":
		return LevelFailed
	case "DEBUG", "VERBOSE":
		return LevelDebug
	default:
		return Level(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// IsFailure reports whether the level marks a failed operation.
func (l Level) IsFailure() bool {
	return l == LevelError || l == LevelFailed
}

// LogEvent is one structured fact extracted from a single log line.
// Timestamp is kept verbatim as written by the producing module; the
// pipeline orders events by file position, not by parsed wall-clock time.
type LogEvent struct {
	Timestamp string `json:"timestamp"`
	Level     Level  `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
	Target    string `json:"target,omitempty"`
	Result    string `json:"result,omitempty"`
}
