package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.SnapshotsScanned.Inc()
	m.SnapshotsScanned.Inc()
	m.ModulesProcessed.Inc()
	m.HealthScore.Set(85)

	path := filepath.Join(t.TempDir(), "pipeline-metrics.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)

	if !strings.Contains(text, "gleaner_snapshots_scanned_total 2") {
		t.Errorf("expected snapshot counter at 2, got:\n%s", text)
	}
	if !strings.Contains(text, "gleaner_modules_processed_total 1") {
		t.Errorf("expected modules counter at 1, got:\n%s", text)
	}
	if !strings.Contains(text, "gleaner_health_score 85") {
		t.Errorf("expected health gauge at 85, got:\n%s", text)
	}
	if !strings.Contains(text, "# HELP") {
		t.Error("expected HELP comments in text format")
	}
}

func TestWriteTextfile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline-metrics.prom")

	m := New()
	m.ErrorsFound.Inc()
	if err := m.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}

	m2 := New()
	if err := m2.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "gleaner_errors_found_total 0") {
		t.Errorf("expected fresh registry to overwrite, got:\n%s", raw)
	}
}

func TestWriteTextfile_MissingDir(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "nope", "metrics.prom"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWriteTextfile_NoStrayTempFiles(t *testing.T) {
	dir := t.TempDir()
	m := New()
	if err := m.WriteTextfile(filepath.Join(dir, "metrics.prom")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "metrics.prom" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only the rendered file, got %v", names)
	}
}
