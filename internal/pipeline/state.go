package pipeline

// State names the pipeline's current stage. Transitions are linear:
// idle through done, with failed reachable only when the output
// directory cannot be established.
type State string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning-artifacts"
	StateAnalyzing   State = "analyzing-modules"
	StateAggregating State = "aggregating"
	StateExporting   State = "exporting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// ModulesProcessed counts the two artifact kinds a run ingested.
type ModulesProcessed struct {
	Type1Count int `json:"type1_count"` // audit snapshots
	Type2Count int `json:"type2_count"` // execution logs
}

// RunResult is the pipeline's terminal report.
type RunResult struct {
	Success           bool             `json:"success"`
	ProcessedDataPath string           `json:"processed_data_path"`
	ModulesProcessed  ModulesProcessed `json:"modules_processed"`
}
