package gleaner

import (
	"context"
	"fmt"

	"github.com/fenwick-labs/gleaner/internal/aggregate"
	"github.com/fenwick-labs/gleaner/internal/config"
	"github.com/fenwick-labs/gleaner/internal/pipeline"
)

// Result summarizes one aggregation run. This is the stable public
// type; internal representations may evolve independently without
// breaking consumers.
type Result struct {
	Success   bool   `json:"success"`
	OutputDir string `json:"output_dir"` // where the documents were written
	Snapshots int    `json:"snapshots"`  // audit snapshots ingested
	Logs      int    `json:"logs"`       // execution logs analyzed
}

// TaskOutcome is an externally known verdict for one module's task,
// overriding whatever its log implies.
type TaskOutcome struct {
	Module  string
	Success bool
}

// Run aggregates one maintenance run and writes the report documents.
// It returns an error for invalid options or an unusable output
// directory; degraded inputs are not errors.
func Run(ctx context.Context, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("gleaner: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	var popts []pipeline.Option
	if len(o.outcomes) > 0 {
		popts = append(popts, pipeline.WithTaskOutcomes(outcomesToInternal(o.outcomes)))
	}
	if o.progress != nil {
		fn := o.progress
		popts = append(popts, pipeline.WithStateHook(func(s pipeline.State) { fn(string(s)) }))
	}
	if o.now != nil {
		popts = append(popts, pipeline.WithNow(o.now))
	}

	p := pipeline.New(o.cfg, o.log, popts...)
	run := p.Run(ctx)

	res := Result{
		Success:   run.Success,
		OutputDir: run.ProcessedDataPath,
		Snapshots: run.ModulesProcessed.Type1Count,
		Logs:      run.ModulesProcessed.Type2Count,
	}
	if !run.Success {
		return res, fmt.Errorf("gleaner: output directory %s is not usable", res.OutputDir)
	}
	return res, nil
}

// Version reports the library version.
func Version() string { return config.Version }

// outcomesToInternal converts the public TaskOutcome to the internal type.
func outcomesToInternal(outcomes []TaskOutcome) []aggregate.TaskOutcome {
	internal := make([]aggregate.TaskOutcome, len(outcomes))
	for i, oc := range outcomes {
		internal[i] = aggregate.TaskOutcome{Module: oc.Module, Success: oc.Success}
	}
	return internal
}
