package safeop

import (
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

var testLog = zerolog.New(io.Discard)

func TestDo_PrimarySucceeds(t *testing.T) {
	r := Do(testLog, "read", func() (int, error) { return 42, nil }, nil, false)
	if !r.Success {
		t.Fatal("expected success")
	}
	if r.Value != 42 {
		t.Fatalf("expected value 42, got %d", r.Value)
	}
	if r.FallbackUsed {
		t.Fatal("fallback should not be marked used")
	}
	if r.Err != nil {
		t.Fatalf("expected nil Err, got %v", r.Err)
	}
}

func TestDo_FallbackSucceeds(t *testing.T) {
	boom := errors.New("boom")
	r := Do(testLog, "read",
		func() (string, error) { return "", boom },
		func() (string, error) { return "recovered", nil },
		false)
	if !r.Success {
		t.Fatal("expected success via fallback")
	}
	if !r.FallbackUsed {
		t.Fatal("expected FallbackUsed=true")
	}
	if r.Value != "recovered" {
		t.Fatalf("expected fallback value, got %q", r.Value)
	}
}

func TestDo_BothFail_ContinueOnError(t *testing.T) {
	r := Do(testLog, "read",
		func() (int, error) { return 0, errors.New("primary") },
		func() (int, error) { return 0, errors.New("secondary") },
		true)
	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != nil {
		t.Fatalf("continueOnError should swallow the error, got %v", r.Err)
	}
	if r.Value != 0 {
		t.Fatalf("expected zero value, got %d", r.Value)
	}
}

func TestDo_BothFail_Propagates(t *testing.T) {
	inner := errors.New("secondary")
	r := Do(testLog, "read",
		func() (int, error) { return 0, errors.New("primary") },
		func() (int, error) { return 0, inner },
		false)
	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err == nil {
		t.Fatal("expected propagated error")
	}
	if !errors.Is(r.Err, inner) {
		t.Fatalf("expected error chain to keep fallback cause, got %v", r.Err)
	}
}

func TestDo_NoFallback_Propagates(t *testing.T) {
	inner := errors.New("primary")
	r := Do(testLog, "read", func() (int, error) { return 0, inner }, nil, false)
	if r.Err == nil || !errors.Is(r.Err, inner) {
		t.Fatalf("expected propagated primary error, got %v", r.Err)
	}
	if r.FallbackUsed {
		t.Fatal("no fallback was supplied")
	}
}

func TestDo_NoFallback_ContinueOnError(t *testing.T) {
	r := Do(testLog, "read", func() (int, error) { return 0, errors.New("primary") }, nil, true)
	if r.Success || r.Err != nil {
		t.Fatalf("expected logged-and-swallowed failure, got success=%v err=%v", r.Success, r.Err)
	}
}
