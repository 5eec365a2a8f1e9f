package gleaner

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/config"
)

type options struct {
	cfg      *config.Config
	log      zerolog.Logger
	outcomes []TaskOutcome
	progress func(stage string)
	now      func() time.Time
}

// Option configures a Run.
type Option func(*options)

// WithRoot sets the maintenance run directory to aggregate. Snapshots
// are read from <root>/data and logs from <root>/logs. Default: ".".
func WithRoot(dir string) Option {
	return func(o *options) { o.cfg.Root = dir }
}

// WithOutputDir writes the report documents somewhere other than the
// default <root>/processed.
func WithOutputDir(dir string) Option {
	return func(o *options) { o.cfg.OutputDir = dir }
}

// WithTimeout bounds the whole run. On expiry the run still exports,
// with placeholders for whatever had not been analyzed. Default: 2m.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.Timeout = d }
}

// WithBatchSize sets how many modules are analyzed per batch. Default: 50.
func WithBatchSize(n int) Option {
	return func(o *options) { o.cfg.BatchSize = n }
}

// WithWorkers sets the number of concurrent module analyses. Default: 4.
func WithWorkers(n int) Option {
	return func(o *options) { o.cfg.Workers = n }
}

// WithPrettyJSON indents the exported documents.
func WithPrettyJSON() Option {
	return func(o *options) { o.cfg.Pretty = true }
}

// WithoutMetricsFile suppresses the Prometheus textfile artifact.
func WithoutMetricsFile() Option {
	return func(o *options) { o.cfg.EmitMetrics = false }
}

// WithLogger routes run logging to the given logger. By default the
// run is silent.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTaskOutcomes supplies externally known per-module task results,
// which override what the logs imply.
func WithTaskOutcomes(outcomes ...TaskOutcome) Option {
	return func(o *options) { o.outcomes = outcomes }
}

// WithProgress registers a callback invoked on each pipeline stage,
// synchronously from the run goroutine.
func WithProgress(fn func(stage string)) Option {
	return func(o *options) { o.progress = fn }
}

// WithNow replaces the wall clock used for session timestamps. For
// tests that need reproducible documents.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func defaultOptions() options {
	return options{
		cfg: config.Default(),
		log: zerolog.Nop(),
	}
}
