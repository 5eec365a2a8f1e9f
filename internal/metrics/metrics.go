// Package metrics tracks pipeline counters and publishes them as a
// Prometheus textfile next to the exported documents, where a node
// exporter's textfile collector can pick them up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the pipeline's instruments on a private registry, so
// parallel runs and tests never share state.
type Metrics struct {
	reg *prometheus.Registry

	SnapshotsScanned  prometheus.Counter
	ModuleLogsScanned prometheus.Counter
	SnapshotFallbacks prometheus.Counter
	ModulesProcessed  prometheus.Counter
	ErrorsFound       prometheus.Counter
	WarningsFound     prometheus.Counter
	ExportFailures    prometheus.Counter
	RunDuration       prometheus.Gauge
	HealthScore       prometheus.Gauge
	SecurityScore     prometheus.Gauge
}

// New builds the instrument set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)
	return &Metrics{
		reg: reg,
		SnapshotsScanned: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_snapshots_scanned_total",
			Help: "Audit snapshots discovered under the data directory",
		}),
		ModuleLogsScanned: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_module_logs_scanned_total",
			Help: "Module execution logs discovered under the logs directory",
		}),
		SnapshotFallbacks: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_snapshot_fallbacks_total",
			Help: "Snapshots replaced by defaults because they were missing or malformed",
		}),
		ModulesProcessed: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_modules_processed_total",
			Help: "Modules that completed analysis",
		}),
		ErrorsFound: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_errors_found_total",
			Help: "Error records extracted across all modules",
		}),
		WarningsFound: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_warnings_found_total",
			Help: "Warning records extracted across all modules",
		}),
		ExportFailures: auto.NewCounter(prometheus.CounterOpts{
			Name: "gleaner_export_failures_total",
			Help: "Artifact documents that could not be written",
		}),
		RunDuration: auto.NewGauge(prometheus.GaugeOpts{
			Name: "gleaner_run_duration_seconds",
			Help: "Wall time of the last pipeline run",
		}),
		HealthScore: auto.NewGauge(prometheus.GaugeOpts{
			Name: "gleaner_health_score",
			Help: "System health score of the last run (0-100)",
		}),
		SecurityScore: auto.NewGauge(prometheus.GaugeOpts{
			Name: "gleaner_security_score",
			Help: "Security score of the last run (0-100)",
		}),
	}
}

// WriteTextfile renders the registry in Prometheus text format to path,
// via a temp file and rename so collectors never read a torn file.
func (m *Metrics) WriteTextfile(path string) error {
	families, err := m.reg.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gleaner-metrics-*")
	if err != nil {
		return fmt.Errorf("metrics: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			tmp.Close()
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: rename: %w", err)
	}
	return nil
}
