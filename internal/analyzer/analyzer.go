// Package analyzer folds a module's execution log and audit snapshot
// into per-module metrics.
package analyzer

import (
	"bufio"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/model"
	"github.com/fenwick-labs/gleaner/internal/parser"
)

// maxLineBytes caps one log line; longer lines abort the scan of that
// file but keep whatever was already accumulated.
const maxLineBytes = 1024 * 1024

// Analyzer runs the line parser over whole artifacts.
type Analyzer struct {
	parser *parser.Parser
	log    zerolog.Logger
}

// New returns an Analyzer using the given parser.
func New(p *parser.Parser, log zerolog.Logger) *Analyzer {
	return &Analyzer{parser: p, log: log}
}

// securitySignal marks log text that indicates a security-relevant
// module did its job.
var securitySignal = regexp.MustCompile(`(?i)(success|disabled|privacy)`)

// AnalyzeLog scans every line of a module's execution log in file order
// and accumulates metrics. Unparseable lines contribute nothing.
func (a *Analyzer) AnalyzeLog(module, text string) *model.ModuleMetrics {
	m := model.NewModuleMetrics(module)
	m.HasLog = true
	m.SecuritySignal = securitySignal.MatchString(text)

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		ext, ok := a.parser.Parse(sc.Text())
		if !ok {
			continue
		}
		a.fold(m, ext)
	}
	if err := sc.Err(); err != nil {
		a.log.Warn().Err(err).Str("module", module).Msg("log scan stopped early")
	}

	if m.TotalOperations > 0 {
		rate := round1(float64(m.SuccessfulOperations) / float64(m.TotalOperations) * 100)
		m.SuccessRate = &rate
	}
	m.DurationSeconds = moduleDuration(m)
	return m
}

// fold merges one line's extraction into the running metrics.
func (a *Analyzer) fold(m *model.ModuleMetrics, ext parser.Extraction) {
	if ev := ext.Event; ev != nil {
		m.TotalOperations++
		if m.StartTime == "" {
			m.StartTime = ev.Timestamp
		}
		m.EndTime = ev.Timestamp

		switch {
		case ev.Level == model.LevelSuccess:
			m.SuccessfulOperations++
			m.SuccessOperations = append(m.SuccessOperations, ev.Message)
		case ev.Level.IsFailure():
			m.FailedOperations++
			m.Errors = append(m.Errors, record(m.Module, ev))
		case ev.Level == model.LevelWarn:
			m.WarningCount++
			m.Warnings = append(m.Warnings, record(m.Module, ev))
		}
	}
	if ext.Duration != nil {
		m.Durations = append(m.Durations, *ext.Duration)
	}
	if ext.Count != nil {
		m.OperationCounts = append(m.OperationCounts, *ext.Count)
	}
	m.Modifications = append(m.Modifications, ext.Modifications...)
	if ext.Task != nil {
		m.TaskDetails = append(m.TaskDetails, *ext.Task)
	}
}

// AnalyzeSnapshot merges the audit snapshot's detection figures into the
// log-derived metrics.
func (a *Analyzer) AnalyzeSnapshot(m *model.ModuleMetrics, snap model.Snapshot) {
	if snap == nil {
		return
	}
	if n, ok := snap.TotalFound(); ok {
		m.DetectedCount = n
	}
	if details := snap.CountFields(); len(details) > 0 {
		m.DetectionDetails = details
	}
}

// LevelCounts buckets a run-wide log by level only, with no per-module
// attribution.
func (a *Analyzer) LevelCounts(text string) map[string]int {
	counts := make(map[string]int)
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		ext, ok := a.parser.Parse(sc.Text())
		if !ok || ext.Event == nil {
			continue
		}
		counts[string(ext.Event.Level)]++
	}
	if err := sc.Err(); err != nil {
		a.log.Warn().Err(err).Msg("global log scan stopped early")
	}
	return counts
}

func record(module string, ev *model.LogEvent) model.ErrorRecord {
	return model.ErrorRecord{
		Module:    module,
		Timestamp: ev.Timestamp,
		Level:     ev.Level,
		Component: ev.Component,
		Message:   ev.Message,
		Severity:  model.SeverityFor(ev.Level),
	}
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// timestampLayouts are the formats modules are known to write.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"15:04:05",
}

func parseWhen(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// moduleDuration derives the module's wall time from its first and last
// structured timestamps, falling back to the sum of explicit duration
// samples when the timestamps do not parse.
func moduleDuration(m *model.ModuleMetrics) float64 {
	start, okS := parseWhen(m.StartTime)
	end, okE := parseWhen(m.EndTime)
	if okS && okE {
		if d := end.Sub(start).Seconds(); d >= 0 {
			return d
		}
	}
	var sum float64
	for _, d := range m.Durations {
		sum += d.Seconds
	}
	return sum
}
