// Package loader reads module audit snapshots, substituting a default
// document when a file is missing or malformed so analysis always has a
// snapshot to work with.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/model"
)

// Load outcome reasons.
const (
	ReasonMissing     = "missing"
	ReasonUnreadable  = "unreadable"
	ReasonInvalidJSON = "invalid-json"
)

// MissingKey builds the reason for a snapshot that parsed but lacks a
// required field.
func MissingKey(key string) string { return "missing-key:" + key }

// Report describes how a snapshot load concluded. OK means the file's own
// content was used; otherwise Reason says why the default was substituted.
type Report struct {
	OK     bool
	Reason string
	Err    error
}

// Loader reads snapshot files.
type Loader struct {
	log zerolog.Logger
}

// New returns a Loader.
func New(log zerolog.Logger) *Loader {
	return &Loader{log: log}
}

// Load reads and decodes the snapshot at path. When the file is absent,
// unreadable, not a JSON object, or missing one of the required top-level
// keys, the default document is returned instead and the report carries
// the reason. Load never fails: the caller always receives a usable,
// non-nil snapshot.
func (l *Loader) Load(path string, required []string, def model.Snapshot) (model.Snapshot, Report) {
	if def == nil {
		def = model.Snapshot{}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		reason := ReasonUnreadable
		if os.IsNotExist(err) {
			reason = ReasonMissing
		}
		l.log.Warn().Str("path", path).Str("reason", reason).Msg("snapshot unavailable, using default")
		return def, Report{Reason: reason, Err: fmt.Errorf("loader: read %s: %w", path, err)}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		l.log.Warn().Str("path", path).Msg("snapshot is not valid JSON, using default")
		return def, Report{Reason: ReasonInvalidJSON, Err: fmt.Errorf("loader: decode %s: %w", path, err)}
	}

	snap := model.Snapshot(doc)
	for _, key := range required {
		if !snap.Has(key) {
			l.log.Warn().Str("path", path).Str("key", key).Msg("snapshot missing required key, using default")
			return def, Report{
				Reason: MissingKey(key),
				Err:    fmt.Errorf("loader: %s: missing required key %q", path, key),
			}
		}
	}

	return snap, Report{OK: true}
}
