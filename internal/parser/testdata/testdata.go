package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled log line for extraction validation.
type CorpusEntry struct {
	Raw                   string  `json:"raw"`
	ExpectedKind          string  `json:"expected_kind"` // event, duration, count, none
	ExpectedLevel         string  `json:"expected_level,omitempty"`
	ExpectedComponent     string  `json:"expected_component,omitempty"`
	ExpectedSeconds       float64 `json:"expected_seconds,omitempty"`
	ExpectedAction        string  `json:"expected_action,omitempty"`
	ExpectedCount         int     `json:"expected_count,omitempty"`
	ExpectedModifications int     `json:"expected_modifications,omitempty"`
	ExpectedTask          string  `json:"expected_task,omitempty"`
	Description           string  `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
