// Package exporter renders the processed-data documents. Every artifact
// write stands alone: one failure is logged and counted while the rest
// are still attempted, so a full disk or a locked file costs one document
// rather than the run.
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 100 * time.Millisecond
)

// Option configures an Exporter.
type Option func(*Exporter)

// WithPretty indents rendered JSON.
func WithPretty(pretty bool) Option {
	return func(e *Exporter) { e.pretty = pretty }
}

// WithRetry overrides the write retry policy.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(e *Exporter) {
		if attempts > 0 {
			e.attempts = attempts
		}
		e.backoff = backoff
	}
}

// Exporter writes artifact documents into one processed-data directory.
type Exporter struct {
	dir      string
	pretty   bool
	attempts int
	backoff  time.Duration
	log      zerolog.Logger
}

// New returns an Exporter rooted at dir.
func New(dir string, log zerolog.Logger, opts ...Option) *Exporter {
	e := &Exporter{
		dir:      dir,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the processed-data directory.
func (e *Exporter) Dir() string { return e.dir }

// EnsureDirs creates the output tree. This is the one failure the
// pipeline treats as unrecoverable.
func (e *Exporter) EnsureDirs() error {
	if err := os.MkdirAll(filepath.Join(e.dir, ModuleSpecificDir), 0o755); err != nil {
		return fmt.Errorf("exporter: create output dir: %w", err)
	}
	return nil
}

// Export writes the four rollup documents plus one file per module.
// It returns how many documents were written and how many failed.
func (e *Exporter) Export(in Input) (written, failed int) {
	in.normalize()

	docs := []struct {
		name string
		doc  any
	}{
		{MetricsSummaryFile, buildMetricsSummary(in)},
		{ModuleResultsFile, buildModuleResults(in)},
		{ErrorsAnalysisFile, buildErrorsAnalysis(in)},
		{HealthScoresFile, buildHealthScores(in)},
	}
	for _, d := range docs {
		if err := e.writeDoc(filepath.Join(e.dir, d.name), d.doc); err != nil {
			e.log.Error().Err(err).Str("artifact", d.name).Msg("artifact write failed")
			failed++
			continue
		}
		written++
	}

	names := make([]string, 0, len(in.Modules))
	for name := range in.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc := moduleDoc{
			Session: in.Session,
			Metrics: in.Modules[name],
			Audit:   in.Audit[name],
		}
		if doc.Audit == nil {
			doc.Audit = map[string]any{}
		}
		path := filepath.Join(e.dir, ModuleSpecificDir, name+".json")
		if err := e.writeDoc(path, doc); err != nil {
			e.log.Error().Err(err).Str("module", name).Msg("module artifact write failed")
			failed++
			continue
		}
		written++
	}

	e.log.Info().Int("written", written).Int("failed", failed).Str("dir", e.dir).Msg("export finished")
	return written, failed
}

// writeDoc marshals one document and writes it whole, retrying transient
// failures with linear backoff.
func (e *Exporter) writeDoc(path string, doc any) error {
	var data []byte
	var err error
	if e.pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("exporter: marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	err = retry(e.attempts, e.backoff, func() error {
		return os.WriteFile(path, data, 0o644)
	})
	if err != nil {
		return fmt.Errorf("exporter: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// retry runs fn up to attempts times, sleeping backoff, 2*backoff, ...
// between tries.
func retry(attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts {
			time.Sleep(backoff * time.Duration(i))
		}
	}
	return err
}
