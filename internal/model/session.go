package model

import (
	"time"

	"github.com/google/uuid"
)

// Session identifies one pipeline run in every exported document.
type Session struct {
	SessionID           string `json:"session_id"`
	CollectionTimestamp string `json:"collection_timestamp"`
	ProcessedAt         string `json:"processed_at"`
}

// NewSession stamps a fresh run identity. CollectionTimestamp records when
// the artifacts were picked up; ProcessedAt is set again at export time.
func NewSession(now time.Time) Session {
	ts := now.UTC().Format(time.RFC3339)
	return Session{
		SessionID:           uuid.NewString(),
		CollectionTimestamp: ts,
		ProcessedAt:         ts,
	}
}
