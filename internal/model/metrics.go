package model

// ModuleMetrics is everything the pipeline knows about one module's run,
// merged from its execution log and its audit snapshot.
type ModuleMetrics struct {
	Module               string             `json:"module"`
	HasLog               bool               `json:"has_log"`
	SecuritySignal       bool               `json:"security_signal"`
	TotalOperations      int                `json:"total_operations"`
	SuccessfulOperations int                `json:"successful_operations"`
	FailedOperations     int                `json:"failed_operations"`
	WarningCount         int                `json:"warning_count"`
	SuccessRate          *float64           `json:"success_rate,omitempty"`
	StartTime            string             `json:"start_time,omitempty"`
	EndTime              string             `json:"end_time,omitempty"`
	DurationSeconds      float64            `json:"duration_seconds"`
	DetectedCount        int                `json:"detected_count"`
	DetectionDetails     map[string]float64 `json:"detection_details"`
	Modifications        []Modification     `json:"modifications"`
	TaskDetails          []TaskDetail       `json:"task_details"`
	Durations            []DurationSample   `json:"durations"`
	OperationCounts      []OperationCount   `json:"operation_counts"`
	SuccessOperations    []string           `json:"success_operations"`
	Errors               []ErrorRecord      `json:"errors"`
	Warnings             []ErrorRecord      `json:"warnings"`
}

// NewModuleMetrics returns metrics for a module with every collection
// non-nil, so exported JSON shows empty arrays rather than nulls.
func NewModuleMetrics(module string) *ModuleMetrics {
	return &ModuleMetrics{
		Module:            module,
		DetectionDetails:  map[string]float64{},
		Modifications:     []Modification{},
		TaskDetails:       []TaskDetail{},
		Durations:         []DurationSample{},
		OperationCounts:   []OperationCount{},
		SuccessOperations: []string{},
		Errors:            []ErrorRecord{},
		Warnings:          []ErrorRecord{},
	}
}

// DashboardMetrics is the run-level rollup across every module.
type DashboardMetrics struct {
	ModulesExecuted      int     `json:"modules_executed"`
	TotalTasks           int     `json:"total_tasks"`
	SuccessfulTasks      int     `json:"successful_tasks"`
	FailedTasks          int     `json:"failed_tasks"`
	SuccessRate          float64 `json:"success_rate"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	ItemsDetected        int     `json:"items_detected"`
	ItemsProcessed       int     `json:"items_processed"`
	ErrorCount           int     `json:"error_count"`
	WarningCount         int     `json:"warning_count"`
	SystemHealthScore    int     `json:"system_health_score"`
	SecurityScore        int     `json:"security_score"`
}
