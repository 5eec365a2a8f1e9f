// Package aggregate rolls per-module metrics up into run-wide dashboard
// figures and the global error list.
package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/model"
)

// securityModules are the modules whose successful run raises the
// security score.
var securityModules = map[string]bool{
	"telemetry-disable":   true,
	"system-optimization": true,
}

// TaskOutcome is an externally supplied per-module task result. When
// present for a module it overrides the outcome inferred from that
// module's log.
type TaskOutcome struct {
	Module  string
	Success bool
}

// Aggregator reduces module analyses. It is a pure reduction: the same
// inputs always produce the same dashboard.
type Aggregator struct {
	log zerolog.Logger
}

// New returns an Aggregator.
func New(log zerolog.Logger) *Aggregator {
	return &Aggregator{log: log}
}

// Dashboard folds every module's metrics into the run-wide rollup.
// External outcomes take precedence for modules they name; the rest fall
// back to log inference, where any failed operation marks the module's
// task as failed.
func (a *Aggregator) Dashboard(modules []*model.ModuleMetrics, external []TaskOutcome) model.DashboardMetrics {
	overrides := make(map[string]bool, len(external))
	known := make(map[string]bool, len(modules))
	for _, m := range modules {
		known[m.Module] = true
	}
	for _, o := range external {
		if !known[o.Module] {
			a.log.Debug().Str("module", o.Module).Msg("task outcome for unknown module ignored")
			continue
		}
		overrides[o.Module] = o.Success
	}

	var d model.DashboardMetrics
	var detected, processed int
	for _, m := range modules {
		if m.HasLog {
			d.ModulesExecuted++
			d.TotalTasks++
			if taskSucceeded(m, overrides) {
				d.SuccessfulTasks++
			} else {
				d.FailedTasks++
			}
		}
		d.TotalDurationSeconds += m.DurationSeconds
		d.ErrorCount += len(m.Errors)
		d.WarningCount += len(m.Warnings)
		detected += m.DetectedCount
		processed += processedCount(m)
	}
	d.ItemsDetected = detected
	d.ItemsProcessed = processed

	if d.TotalTasks > 0 {
		d.SuccessRate = round1(float64(d.SuccessfulTasks) / float64(d.TotalTasks) * 100)
	}
	d.SystemHealthScore = healthScore(d.SuccessRate, d.ErrorCount, processed, detected, d.ModulesExecuted)
	d.SecurityScore = a.securityScore(modules)
	return d
}

// taskSucceeded applies the precedence rule between external outcomes
// and log inference.
func taskSucceeded(m *model.ModuleMetrics, overrides map[string]bool) bool {
	if success, ok := overrides[m.Module]; ok {
		return success
	}
	return m.FailedOperations == 0
}

// processedCount takes the explicit count markers when a module logged
// any, otherwise falls back to counting recorded modifications.
func processedCount(m *model.ModuleMetrics) int {
	var sum int
	for _, c := range m.OperationCounts {
		sum += c.Count
	}
	if sum == 0 {
		return len(m.Modifications)
	}
	return sum
}

// healthScore sums four independently capped factors into a 0..100 score.
func healthScore(successRate float64, errors, processed, detected, executed int) int {
	score := 0

	switch {
	case successRate >= 90:
		score += 25
	case successRate >= 75:
		score += 20
	case successRate >= 50:
		score += 15
	default:
		score += 5
	}

	switch {
	case errors == 0:
		score += 25
	case errors <= 2:
		score += 20
	case errors <= 5:
		score += 15
	default:
		score += 5
	}

	efficiency := 1.0
	if detected > 0 {
		efficiency = float64(processed) / float64(detected)
	}
	switch {
	case efficiency >= 0.9:
		score += 25
	case efficiency >= 0.7:
		score += 20
	default:
		score += 10
	}

	switch {
	case executed >= 5:
		score += 25
	case executed >= 3:
		score += 20
	default:
		score += 10
	}

	return score
}

// securityScore starts at a neutral base and credits each
// security-relevant module whose log shows the expected signal.
func (a *Aggregator) securityScore(modules []*model.ModuleMetrics) int {
	score := 50
	for _, m := range modules {
		if securityModules[strings.ToLower(m.Module)] && m.SecuritySignal {
			score += 25
		}
	}
	return min(score, 100)
}

// PerformanceScore grades processing efficiency 0..100 from the
// processed/detected ratio. Nothing detected is a perfect score: there
// was nothing to process.
func PerformanceScore(d model.DashboardMetrics) int {
	if d.ItemsDetected == 0 {
		return 100
	}
	ratio := float64(d.ItemsProcessed) / float64(d.ItemsDetected)
	if ratio > 1 {
		ratio = 1
	}
	return int(math.Round(ratio * 100))
}

// GlobalErrors flattens every module's errors and warnings into one list,
// most urgent first, newest first within a severity.
func (a *Aggregator) GlobalErrors(modules []*model.ModuleMetrics) []model.ErrorRecord {
	records := []model.ErrorRecord{}
	for _, m := range modules {
		records = append(records, m.Errors...)
		records = append(records, m.Warnings...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i].Severity.Rank(), records[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return records[i].Timestamp > records[j].Timestamp
	})
	return records
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
