// Package parser turns raw execution-log lines into structured events,
// duration samples, operation counts, modifications and task markers.
//
// Extraction runs a fixed precedence ladder per line: structured entry,
// legacy bracketed entry, performance marker, count marker. The first
// rung that matches wins; informational structured entries additionally
// get modification and task-detail extraction over their message text.
// Lines matching nothing are dropped without complaint.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/fenwick-labs/gleaner/internal/model"
)

// memoCapacity bounds the parse cache. Logs repeat lines heavily
// (progress loops, retries), so identical lines skip the regex ladder.
const memoCapacity = 512

// Extraction is everything one line yielded. At most one of Event,
// Duration or Count is set; Modifications and Task ride along only with
// an informational Event. Shared via the parse cache, so callers must
// treat it as read-only.
type Extraction struct {
	Event         *model.LogEvent
	Duration      *model.DurationSample
	Count         *model.OperationCount
	Modifications []model.Modification
	Task          *model.TaskDetail
}

// Empty reports whether the line yielded nothing.
func (e Extraction) Empty() bool {
	return e.Event == nil && e.Duration == nil && e.Count == nil &&
		len(e.Modifications) == 0 && e.Task == nil
}

// Primary line grammars, tried in order.
var (
	reStructured = regexp.MustCompile(`^\[([^\]]+)\]\s*\[([A-Z]+)\]\s*\[([^\]]+)\]\s*(.*)$`)
	reLegacy     = regexp.MustCompile(`(?i)\[([^\]]+)\].*?\[(INFO|SUCCESS|OK|WARN|WARNING|ERROR|ERR|FAILED|FAIL|DEBUG)\]\s*(.*)$`)
	reCompleted  = regexp.MustCompile(`(?i)\bcompleted\s+(.+?)\s+in\s+(\d+(?:\.\d+)?)\s*(ms|s)\b`)
	reDuration   = regexp.MustCompile(`(?i)\bduration:?\s*(\d+(?:\.\d+)?)\s*(ms|s)\b`)
	reCountNV    = regexp.MustCompile(`(?i)\b(\d+)\s+(?:[\w-]+\s+){0,2}?(installed|removed|optimized|disabled|updated|processed|detected)\b`)
	reCountVN    = regexp.MustCompile(`(?i)\b(installed|removed|optimized|disabled|updated|processed|detected)\b[:\s]+(\d+)\b`)
)

// Task lifecycle grammars, applied to informational messages.
var (
	reTaskStart    = regexp.MustCompile(`(?i)^starting\s+(.+?(?:analysis|installation|removal|optimization|processing|cleanup|scan))\b`)
	reTaskProgress = regexp.MustCompile(`(?i)^processing\s+(\d+)\s+(items?|apps?|applications?|services?|files?|entries|packages?|keys?)\b`)
)

// synthComponent labels events recovered from legacy lines that carry no
// component bracket of their own.
const synthComponent = "general"

// Parser extracts structure from log lines, memoizing per raw line.
type Parser struct {
	memo *lru.Cache[string, Extraction]
}

// New returns a ready Parser.
func New() *Parser {
	memo, err := lru.New[string, Extraction](memoCapacity)
	if err != nil {
		// memoCapacity is a positive constant
		panic(err)
	}
	return &Parser{memo: memo}
}

// Parse extracts structure from one raw line. The second return is false
// when the line matched no grammar. Safe for concurrent use; the returned
// extraction may be shared and must not be mutated.
func (p *Parser) Parse(line string) (Extraction, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return Extraction{}, false
	}
	s = norm.NFC.String(s)

	if ext, ok := p.memo.Get(s); ok {
		return ext, !ext.Empty()
	}

	ext := parseLine(s)
	p.memo.Add(s, ext)
	return ext, !ext.Empty()
}

func parseLine(s string) Extraction {
	if m := reStructured.FindStringSubmatch(s); m != nil {
		ev := &model.LogEvent{
			Timestamp: strings.TrimSpace(m[1]),
			Level:     model.ParseLevel(m[2]),
			Component: strings.TrimSpace(m[3]),
			Message:   strings.TrimSpace(m[4]),
		}
		ext := Extraction{Event: ev}
		if ev.Level == model.LevelInfo {
			ext.Modifications = extractModifications(ev.Message)
			ext.Task = extractTask(ev.Message, ev.Timestamp)
		}
		return ext
	}

	if m := reLegacy.FindStringSubmatch(s); m != nil {
		return Extraction{Event: &model.LogEvent{
			Timestamp: strings.TrimSpace(m[1]),
			Level:     model.ParseLevel(m[2]),
			Component: synthComponent,
			Message:   strings.TrimSpace(m[3]),
		}}
	}

	if m := reCompleted.FindStringSubmatch(s); m != nil {
		return Extraction{Duration: &model.DurationSample{
			Label:   strings.TrimSpace(m[1]),
			Seconds: toSeconds(m[2], m[3]),
		}}
	}
	if m := reDuration.FindStringSubmatch(s); m != nil {
		return Extraction{Duration: &model.DurationSample{
			Label:   "duration",
			Seconds: toSeconds(m[1], m[2]),
		}}
	}

	if m := reCountNV.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return Extraction{Count: &model.OperationCount{
			Action: strings.ToLower(m[2]),
			Count:  n,
		}}
	}
	if m := reCountVN.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[2])
		return Extraction{Count: &model.OperationCount{
			Action: strings.ToLower(m[1]),
			Count:  n,
		}}
	}

	return Extraction{}
}

// toSeconds normalizes a matched magnitude and unit to seconds.
func toSeconds(num, unit string) float64 {
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if strings.EqualFold(unit, "ms") {
		return v / 1000
	}
	return v
}

// extractTask pulls a task lifecycle marker out of an informational
// message, or nil.
func extractTask(msg, timestamp string) *model.TaskDetail {
	if m := reTaskStart.FindStringSubmatch(msg); m != nil {
		return &model.TaskDetail{
			Kind:      model.TaskStart,
			Name:      strings.TrimSpace(m[1]),
			Timestamp: timestamp,
		}
	}
	if m := reCompleted.FindStringSubmatch(msg); m != nil {
		return &model.TaskDetail{
			Kind:            model.TaskComplete,
			Name:            strings.TrimSpace(m[1]),
			DurationSeconds: toSeconds(m[2], m[3]),
			Timestamp:       timestamp,
		}
	}
	if m := reTaskProgress.FindStringSubmatch(msg); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &model.TaskDetail{
			Kind:      model.TaskProgress,
			Count:     n,
			Unit:      strings.ToLower(m[2]),
			Timestamp: timestamp,
		}
	}
	return nil
}
