package exporter

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fenwick-labs/gleaner/internal/model"
)

var testLog = zerolog.New(io.Discard)

func sampleInput() Input {
	m := model.NewModuleMetrics("app-cleanup")
	m.HasLog = true
	m.TotalOperations = 3
	m.SuccessfulOperations = 3
	m2 := model.NewModuleMetrics("telemetry-disable")
	m2.HasLog = true
	m2.Errors = append(m2.Errors, model.ErrorRecord{
		Module: "telemetry-disable", Timestamp: "2025-01-01 10:00:00",
		Level: model.LevelError, Message: "boom", Severity: model.SeverityHigh,
	})

	return Input{
		Session: model.Session{
			SessionID:           "11111111-2222-3333-4444-555555555555",
			CollectionTimestamp: "2025-01-01T10:00:00Z",
			ProcessedAt:         "2025-01-01T10:05:00Z",
		},
		Dashboard:        model.DashboardMetrics{ModulesExecuted: 2, SystemHealthScore: 90, SecurityScore: 75},
		PerformanceScore: 100,
		Modules: map[string]*model.ModuleMetrics{
			"app-cleanup":       m,
			"telemetry-disable": m2,
		},
		Audit: map[string]model.Snapshot{
			"app-cleanup": {"summary": map[string]any{"total_found": float64(2)}},
		},
		GlobalErrors: m2.Errors,
	}
}

func decodeFile(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return doc
}

func TestExport_WritesAllDocuments(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLog)
	if err := e.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	written, failed := e.Export(sampleInput())
	if failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}
	// Four rollup documents plus one per module.
	if written != 6 {
		t.Fatalf("expected 6 documents, got %d", written)
	}

	summary := decodeFile(t, filepath.Join(dir, MetricsSummaryFile))
	session := summary["session"].(map[string]any)
	if session["session_id"] != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("unexpected session: %v", session)
	}
	dashboard := summary["dashboard"].(map[string]any)
	if dashboard["system_health_score"] != float64(90) {
		t.Fatalf("unexpected dashboard: %v", dashboard)
	}

	health := decodeFile(t, filepath.Join(dir, HealthScoresFile))
	if health["system"] != float64(90) || health["security"] != float64(75) || health["performance"] != float64(100) {
		t.Fatalf("unexpected health scores: %v", health)
	}

	for _, name := range []string{"app-cleanup", "telemetry-disable"} {
		mod := decodeFile(t, filepath.Join(dir, ModuleSpecificDir, name+".json"))
		metrics := mod["metrics"].(map[string]any)
		if metrics["module"] != name {
			t.Fatalf("module doc %s: %v", name, metrics["module"])
		}
	}
}

func TestExport_EmptyInputKeepsShape(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLog)
	if err := e.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	written, failed := e.Export(Input{})
	if failed != 0 || written != 4 {
		t.Fatalf("expected 4 rollup documents, got written=%d failed=%d", written, failed)
	}

	summary := decodeFile(t, filepath.Join(dir, MetricsSummaryFile))
	if modules, ok := summary["modules"].(map[string]any); !ok || len(modules) != 0 {
		t.Fatalf("expected empty modules object, got %v", summary["modules"])
	}

	errsDoc := decodeFile(t, filepath.Join(dir, ErrorsAnalysisFile))
	if errsList, ok := errsDoc["errors"].([]any); !ok || len(errsList) != 0 {
		t.Fatalf("expected empty errors array, got %v", errsDoc["errors"])
	}
	counts := errsDoc["severity_counts"].(map[string]any)
	if counts["high"] != float64(0) {
		t.Fatalf("expected zeroed severity counts, got %v", counts)
	}

	results := decodeFile(t, filepath.Join(dir, ModuleResultsFile))
	if audit, ok := results["audit_results"].(map[string]any); !ok || len(audit) != 0 {
		t.Fatalf("expected empty audit object, got %v", results["audit_results"])
	}
}

func TestExport_ModuleWithoutAuditGetsEmptyObject(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLog)
	if err := e.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	in := sampleInput()
	e.Export(in)

	mod := decodeFile(t, filepath.Join(dir, ModuleSpecificDir, "telemetry-disable.json"))
	if audit, ok := mod["audit"].(map[string]any); !ok || len(audit) != 0 {
		t.Fatalf("expected empty audit object, got %v", mod["audit"])
	}
}

func TestExport_PrettyIndentation(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLog, WithPretty(true))
	if err := e.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	e.Export(Input{})

	raw, err := os.ReadFile(filepath.Join(dir, HealthScoresFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\n  \"") {
		t.Fatalf("expected indented JSON, got: %s", raw)
	}
}

func TestExport_IndependentFailures(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, testLog, WithRetry(1, 0))
	if err := e.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	// A directory squatting on the file name makes that one write fail.
	if err := os.Mkdir(filepath.Join(dir, MetricsSummaryFile), 0o755); err != nil {
		t.Fatal(err)
	}

	written, failed := e.Export(sampleInput())
	if failed != 1 {
		t.Fatalf("expected exactly one failure, got %d", failed)
	}
	if written != 5 {
		t.Fatalf("expected the other five documents written, got %d", written)
	}
	if _, err := os.Stat(filepath.Join(dir, HealthScoresFile)); err != nil {
		t.Fatalf("expected later artifacts to still be written: %v", err)
	}
}

func TestRetry(t *testing.T) {
	var calls int
	err := retry(3, 0, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}

	calls = 0
	sentinel := errors.New("persistent")
	err = retry(2, 0, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected final error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_BacksOffLinearly(t *testing.T) {
	start := time.Now()
	_ = retry(3, 10*time.Millisecond, func() error { return errors.New("always") })
	// Two sleeps: 10ms then 20ms.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected at least 30ms of backoff, got %v", elapsed)
	}
}
