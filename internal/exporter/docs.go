package exporter

import (
	"github.com/fenwick-labs/gleaner/internal/model"
)

// Artifact file names under the processed-data directory.
const (
	MetricsSummaryFile = "metrics-summary.json"
	ModuleResultsFile  = "module-results.json"
	ErrorsAnalysisFile = "errors-analysis.json"
	HealthScoresFile   = "health-scores.json"
	ModuleSpecificDir  = "module-specific"
	MetricsTextfile    = "pipeline-metrics.prom"
)

// ExecutionSummary describes what the run ingested, including the
// level buckets of the run-wide maintenance log.
type ExecutionSummary struct {
	GlobalLogLevels   map[string]int `json:"global_log_levels"`
	SnapshotsLoaded   int            `json:"snapshots_loaded"`
	LogsAnalyzed      int            `json:"logs_analyzed"`
	DegradedSnapshots []string       `json:"degraded_snapshots"`
}

// Input is everything the exporter renders. The pipeline assembles one
// Input per run.
type Input struct {
	Session          model.Session
	Dashboard        model.DashboardMetrics
	PerformanceScore int
	Summary          ExecutionSummary
	Modules          map[string]*model.ModuleMetrics
	Audit            map[string]model.Snapshot
	GlobalErrors     []model.ErrorRecord
}

// normalize makes every collection non-nil so the rendered JSON always
// shows empty objects and arrays, never null.
func (in *Input) normalize() {
	if in.Summary.GlobalLogLevels == nil {
		in.Summary.GlobalLogLevels = map[string]int{}
	}
	if in.Summary.DegradedSnapshots == nil {
		in.Summary.DegradedSnapshots = []string{}
	}
	if in.Modules == nil {
		in.Modules = map[string]*model.ModuleMetrics{}
	}
	if in.Audit == nil {
		in.Audit = map[string]model.Snapshot{}
	}
	if in.GlobalErrors == nil {
		in.GlobalErrors = []model.ErrorRecord{}
	}
}

// metricsSummaryDoc is the top-level rollup document.
type metricsSummaryDoc struct {
	Session          model.Session                   `json:"session"`
	Dashboard        model.DashboardMetrics          `json:"dashboard"`
	ExecutionSummary ExecutionSummary                `json:"execution_summary"`
	Modules          map[string]*model.ModuleMetrics `json:"modules"`
}

// performanceData is the per-module timing slice of the module-results
// document.
type performanceData struct {
	DurationSeconds float64                `json:"duration_seconds"`
	Samples         []model.DurationSample `json:"samples"`
	TaskDetails     []model.TaskDetail     `json:"task_details"`
}

// moduleResultsDoc pairs audit snapshots with execution analysis.
type moduleResultsDoc struct {
	Session       model.Session                   `json:"session"`
	AuditResults  map[string]model.Snapshot       `json:"audit_results"`
	Execution     map[string]*model.ModuleMetrics `json:"execution_analysis"`
	Modifications map[string][]model.Modification `json:"modifications"`
	Performance   map[string]performanceData      `json:"performance"`
}

// errorsAnalysisDoc is the triage view over every extracted record.
type errorsAnalysisDoc struct {
	Session        model.Session                  `json:"session"`
	Errors         []model.ErrorRecord            `json:"errors"`
	ByModule       map[string][]model.ErrorRecord `json:"by_module"`
	SeverityCounts map[string]int                 `json:"severity_counts"`
}

// healthScoresDoc carries the session sub-scores.
type healthScoresDoc struct {
	Session     model.Session `json:"session"`
	System      int           `json:"system"`
	Security    int           `json:"security"`
	Performance int           `json:"performance"`
}

// moduleDoc is one module's full record, written under module-specific/.
type moduleDoc struct {
	Session model.Session        `json:"session"`
	Metrics *model.ModuleMetrics `json:"metrics"`
	Audit   model.Snapshot       `json:"audit"`
}

func buildMetricsSummary(in Input) metricsSummaryDoc {
	return metricsSummaryDoc{
		Session:          in.Session,
		Dashboard:        in.Dashboard,
		ExecutionSummary: in.Summary,
		Modules:          in.Modules,
	}
}

func buildModuleResults(in Input) moduleResultsDoc {
	mods := make(map[string][]model.Modification, len(in.Modules))
	perf := make(map[string]performanceData, len(in.Modules))
	for name, m := range in.Modules {
		mods[name] = m.Modifications
		perf[name] = performanceData{
			DurationSeconds: m.DurationSeconds,
			Samples:         m.Durations,
			TaskDetails:     m.TaskDetails,
		}
	}
	return moduleResultsDoc{
		Session:       in.Session,
		AuditResults:  in.Audit,
		Execution:     in.Modules,
		Modifications: mods,
		Performance:   perf,
	}
}

func buildErrorsAnalysis(in Input) errorsAnalysisDoc {
	byModule := map[string][]model.ErrorRecord{}
	counts := map[string]int{
		string(model.SeverityHigh):   0,
		string(model.SeverityMedium): 0,
		string(model.SeverityLow):    0,
	}
	for _, rec := range in.GlobalErrors {
		byModule[rec.Module] = append(byModule[rec.Module], rec)
		counts[string(rec.Severity)]++
	}
	return errorsAnalysisDoc{
		Session:        in.Session,
		Errors:         in.GlobalErrors,
		ByModule:       byModule,
		SeverityCounts: counts,
	}
}

func buildHealthScores(in Input) healthScoresDoc {
	return healthScoresDoc{
		Session:     in.Session,
		System:      in.Dashboard.SystemHealthScore,
		Security:    in.Dashboard.SecurityScore,
		Performance: in.PerformanceScore,
	}
}
