// Package scanner discovers run artifacts on disk: module audit
// snapshots under data/ and execution logs under logs/.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// snapshotSuffix marks a data file as a module audit snapshot.
const snapshotSuffix = "-results.json"

// globalLogName is the run-wide log written next to the module log dirs.
const globalLogName = "maintenance.log"

// moduleLogName is the per-module execution log inside each log dir.
const moduleLogName = "execution.log"

// SnapshotRef points at one module's audit snapshot.
type SnapshotRef struct {
	Module string
	Path   string
}

// LogRef points at one module's execution log.
type LogRef struct {
	Module string
	Path   string
}

// Scanner lists artifacts for one run root. Discovery never fails: an
// absent or unreadable directory yields an empty listing, because a run
// that produced nothing is still a valid run.
type Scanner struct {
	dataDir string
	logsDir string
	log     zerolog.Logger
}

// New returns a Scanner over the given artifact directories.
func New(dataDir, logsDir string, log zerolog.Logger) *Scanner {
	return &Scanner{dataDir: dataDir, logsDir: logsDir, log: log}
}

// Snapshots lists module audit snapshots in the data directory, sorted by
// module name. Files not matching the snapshot naming scheme are skipped.
func (s *Scanner) Snapshots() []SnapshotRef {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		s.log.Debug().Err(err).Str("dir", s.dataDir).Msg("no data directory")
		return nil
	}

	var refs []SnapshotRef
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		module := strings.TrimSuffix(e.Name(), snapshotSuffix)
		if module == "" {
			continue
		}
		refs = append(refs, SnapshotRef{
			Module: module,
			Path:   filepath.Join(s.dataDir, e.Name()),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Module < refs[j].Module })
	s.log.Debug().Int("count", len(refs)).Msg("snapshots discovered")
	return refs
}

// ModuleLogs lists per-module execution logs, sorted by module name. A
// log directory without an execution log inside is skipped.
func (s *Scanner) ModuleLogs() []LogRef {
	entries, err := os.ReadDir(s.logsDir)
	if err != nil {
		s.log.Debug().Err(err).Str("dir", s.logsDir).Msg("no logs directory")
		return nil
	}

	var refs []LogRef
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(s.logsDir, e.Name(), moduleLogName)
		if _, err := os.Stat(path); err != nil {
			s.log.Debug().Str("module", e.Name()).Msg("log dir without execution log")
			continue
		}
		refs = append(refs, LogRef{Module: e.Name(), Path: path})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Module < refs[j].Module })
	s.log.Debug().Int("count", len(refs)).Msg("module logs discovered")
	return refs
}

// GlobalLog returns the run-wide maintenance log path, if present.
func (s *Scanner) GlobalLog() (string, bool) {
	path := filepath.Join(s.logsDir, globalLogName)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
