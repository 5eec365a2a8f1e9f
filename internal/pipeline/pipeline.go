// Package pipeline sequences one aggregation run: scan artifacts, load
// and analyze each module, aggregate, export. Every stage runs inside a
// recovery envelope so bad inputs degrade the output instead of
// aborting the run; the only unrecoverable failure is an output
// directory that cannot be created.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/aggregate"
	"github.com/fenwick-labs/gleaner/internal/analyzer"
	"github.com/fenwick-labs/gleaner/internal/batch"
	"github.com/fenwick-labs/gleaner/internal/config"
	"github.com/fenwick-labs/gleaner/internal/exporter"
	"github.com/fenwick-labs/gleaner/internal/loader"
	"github.com/fenwick-labs/gleaner/internal/metrics"
	"github.com/fenwick-labs/gleaner/internal/model"
	"github.com/fenwick-labs/gleaner/internal/parser"
	"github.com/fenwick-labs/gleaner/internal/safeop"
	"github.com/fenwick-labs/gleaner/internal/scanner"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStateHook registers a callback fired on every state transition,
// synchronously from the run goroutine.
func WithStateHook(hook func(State)) Option {
	return func(p *Pipeline) { p.onState = hook }
}

// WithTaskOutcomes supplies externally known per-module task results,
// which override log inference during aggregation.
func WithTaskOutcomes(outcomes []aggregate.TaskOutcome) Option {
	return func(p *Pipeline) { p.outcomes = outcomes }
}

// WithMetrics replaces the default instrument set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithNow replaces the wall clock used for session stamps.
func WithNow(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline owns the components of one aggregation run.
type Pipeline struct {
	cfg      *config.Config
	scanner  *scanner.Scanner
	loader   *loader.Loader
	analyzer *analyzer.Analyzer
	agg      *aggregate.Aggregator
	exporter *exporter.Exporter
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time

	outcomes []aggregate.TaskOutcome
	onState  func(State)
	state    State
}

// New wires a Pipeline from configuration. The zero set of options is a
// complete pipeline.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		scanner:  scanner.New(cfg.DataDir(), cfg.LogsDir(), log),
		loader:   loader.New(log),
		analyzer: analyzer.New(parser.New(), log),
		agg:      aggregate.New(log),
		exporter: exporter.New(cfg.ProcessedDir(), log, exporter.WithPretty(cfg.Pretty)),
		metrics:  metrics.New(),
		log:      log,
		now:      time.Now,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the most recent state transition. Meaningful once Run
// has returned, or from within a state hook.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) setState(s State) {
	p.state = s
	p.log.Debug().Str("state", string(s)).Msg("pipeline state")
	if p.onState != nil {
		p.onState(s)
	}
}

// scanned is the artifact inventory produced by the scanning stage.
type scanned struct {
	snapshots []scanner.SnapshotRef
	logs      []scanner.LogRef
	global    string
	hasGlobal bool
}

// moduleWork pairs one module with whichever artifacts it left behind.
type moduleWork struct {
	name     string
	snapPath string
	hasSnap  bool
	logPath  string
	hasLog   bool
}

// analyzed is one module's analysis plus the inputs worth re-emitting.
type analyzed struct {
	metrics  *model.ModuleMetrics
	snapshot model.Snapshot
	hasSnap  bool
	degraded string
}

// Run executes the full pipeline. It always produces the complete output
// document set when the output directory is writable, even when every
// input artifact is missing or corrupt; cancellation mid-run exports
// whatever was finished by then.
func (p *Pipeline) Run(ctx context.Context) RunResult {
	start := time.Now()
	session := model.NewSession(p.now())
	p.log.Info().
		Str("session", session.SessionID).
		Str("root", p.cfg.Root).
		Msg("pipeline starting")

	if err := p.exporter.EnsureDirs(); err != nil {
		p.log.Error().Err(err).Msg("cannot establish output directory")
		p.setState(StateFailed)
		return RunResult{ProcessedDataPath: p.exporter.Dir()}
	}

	p.setState(StateScanning)
	scan := safeop.Do(p.log, "scan artifacts", func() (scanned, error) {
		s := scanned{
			snapshots: p.scanner.Snapshots(),
			logs:      p.scanner.ModuleLogs(),
		}
		s.global, s.hasGlobal = p.scanner.GlobalLog()
		return s, nil
	}, nil, true).Value
	p.metrics.SnapshotsScanned.Add(float64(len(scan.snapshots)))
	p.metrics.ModuleLogsScanned.Add(float64(len(scan.logs)))

	p.setState(StateAnalyzing)
	results := p.analyzeModules(ctx, scan)
	globalLevels := p.globalLevels(scan)

	p.setState(StateAggregating)
	modules := make([]*model.ModuleMetrics, 0, len(results))
	moduleMap := make(map[string]*model.ModuleMetrics, len(results))
	audit := make(map[string]model.Snapshot)
	degraded := []string{}
	for _, r := range results {
		modules = append(modules, r.metrics)
		moduleMap[r.metrics.Module] = r.metrics
		if r.hasSnap {
			audit[r.metrics.Module] = r.snapshot
		}
		if r.degraded != "" {
			degraded = append(degraded, r.degraded)
		}
		p.metrics.ErrorsFound.Add(float64(len(r.metrics.Errors)))
		p.metrics.WarningsFound.Add(float64(len(r.metrics.Warnings)))
	}
	dashboard := p.agg.Dashboard(modules, p.outcomes)
	globalErrors := p.agg.GlobalErrors(modules)

	p.setState(StateExporting)
	session.ProcessedAt = p.now().UTC().Format(time.RFC3339)
	_, failed := p.exporter.Export(exporter.Input{
		Session:          session,
		Dashboard:        dashboard,
		PerformanceScore: aggregate.PerformanceScore(dashboard),
		Summary: exporter.ExecutionSummary{
			GlobalLogLevels:   globalLevels,
			SnapshotsLoaded:   len(scan.snapshots),
			LogsAnalyzed:      len(scan.logs),
			DegradedSnapshots: degraded,
		},
		Modules:      moduleMap,
		Audit:        audit,
		GlobalErrors: globalErrors,
	})
	p.metrics.ExportFailures.Add(float64(failed))
	p.metrics.HealthScore.Set(float64(dashboard.SystemHealthScore))
	p.metrics.SecurityScore.Set(float64(dashboard.SecurityScore))
	p.metrics.RunDuration.Set(time.Since(start).Seconds())
	if p.cfg.EmitMetrics {
		p.writeMetricsFile()
	}

	p.setState(StateDone)
	p.log.Info().
		Int("snapshots", len(scan.snapshots)).
		Int("logs", len(scan.logs)).
		Int("health", dashboard.SystemHealthScore).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline finished")

	return RunResult{
		Success:           true,
		ProcessedDataPath: p.exporter.Dir(),
		ModulesProcessed: ModulesProcessed{
			Type1Count: len(scan.snapshots),
			Type2Count: len(scan.logs),
		},
	}
}

// analyzeModules fans per-module analysis out over the worker pool and
// returns results in module order.
func (p *Pipeline) analyzeModules(ctx context.Context, scan scanned) []analyzed {
	work := buildWork(scan)

	results := batch.Run(ctx, work, p.cfg.BatchSize, p.cfg.Workers, func(ctx context.Context, w moduleWork) analyzed {
		return p.analyzeOne(w)
	})

	out := make([]analyzed, 0, len(results))
	for i, r := range results {
		if r.Skipped {
			// Canceled before this module ran; keep the contract shape.
			out = append(out, analyzed{metrics: model.NewModuleMetrics(work[i].name)})
			continue
		}
		out = append(out, r.Value)
		p.metrics.ModulesProcessed.Inc()
	}
	return out
}

// analyzeOne folds a single module's log and snapshot into metrics.
func (p *Pipeline) analyzeOne(w moduleWork) analyzed {
	var a analyzed

	if w.hasLog {
		text := safeop.Do(p.log, "read log "+w.name, func() (string, error) {
			raw, err := os.ReadFile(w.logPath)
			return string(raw), err
		}, nil, true)
		if text.Success {
			a.metrics = p.analyzer.AnalyzeLog(w.name, text.Value)
		} else {
			a.metrics = model.NewModuleMetrics(w.name)
			a.metrics.HasLog = true
		}
	} else {
		a.metrics = model.NewModuleMetrics(w.name)
	}

	if w.hasSnap {
		snap, rep := p.loader.Load(w.snapPath, nil, model.Snapshot{})
		a.snapshot = snap
		a.hasSnap = true
		if !rep.OK {
			a.degraded = w.name + ": " + rep.Reason
			p.metrics.SnapshotFallbacks.Inc()
		}
		p.analyzer.AnalyzeSnapshot(a.metrics, snap)
	}
	return a
}

// globalLevels buckets the run-wide maintenance log by level.
func (p *Pipeline) globalLevels(scan scanned) map[string]int {
	if !scan.hasGlobal {
		return map[string]int{}
	}
	text := safeop.Do(p.log, "read global log", func() (string, error) {
		raw, err := os.ReadFile(scan.global)
		return string(raw), err
	}, nil, true)
	if !text.Success {
		return map[string]int{}
	}
	return p.analyzer.LevelCounts(text.Value)
}

// writeMetricsFile publishes the Prometheus textfile; failure costs the
// artifact, not the run.
func (p *Pipeline) writeMetricsFile() {
	path := filepath.Join(p.exporter.Dir(), exporter.MetricsTextfile)
	if err := p.metrics.WriteTextfile(path); err != nil {
		p.log.Error().Err(err).Msg("metrics textfile write failed")
	}
}

// buildWork merges snapshot and log listings into one ordered work list
// covering every module that left either artifact.
func buildWork(scan scanned) []moduleWork {
	byName := map[string]*moduleWork{}
	for _, ref := range scan.snapshots {
		byName[ref.Module] = &moduleWork{name: ref.Module, snapPath: ref.Path, hasSnap: true}
	}
	for _, ref := range scan.logs {
		if w, ok := byName[ref.Module]; ok {
			w.logPath = ref.Path
			w.hasLog = true
			continue
		}
		byName[ref.Module] = &moduleWork{name: ref.Module, logPath: ref.Path, hasLog: true}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	work := make([]moduleWork, 0, len(names))
	for _, name := range names {
		work = append(work, *byName[name])
	}
	return work
}
