package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func initBuffer(t *testing.T, detailed bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := InitWithConfig(LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: detailed, Output: &buf}); err != nil {
		t.Fatalf("InitWithConfig() error = %v", err)
	}
	t.Cleanup(func() { globalLogger = nil; detailedLogging = false })
	return &buf
}

func lines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	buf := initBuffer(t, false)
	ctx := context.Background()

	Debug(ctx, "hidden")
	Info(ctx, "shown", "ticker", "AAPL")

	got := lines(buf)
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1: %s", len(got), buf.String())
	}
	if got[0]["msg"] != "shown" || got[0]["ticker"] != "AAPL" {
		t.Errorf("unexpected line %v", got[0])
	}
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	buf := initBuffer(t, true)

	Debug(context.Background(), "visible")

	got := lines(buf)
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1", len(got))
	}
	src, ok := got[0]["source"].(map[string]any)
	if !ok {
		t.Fatalf("missing source group: %v", got[0])
	}
	if file, _ := src["file"].(string); !strings.HasSuffix(file, "logger_test.go") {
		t.Errorf("source file = %v, want the caller", src["file"])
	}
}

func TestErrorWithErr(t *testing.T) {
	buf := initBuffer(t, false)

	ErrorWithErr(context.Background(), "fetch failed", errors.New("boom"), "symbol", "ZZZZ")

	got := lines(buf)
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1", len(got))
	}
	if got[0]["level"] != "ERROR" || got[0]["error"] != "boom" || got[0]["symbol"] != "ZZZZ" {
		t.Errorf("unexpected line %v", got[0])
	}
}

func TestOperationTimer(t *testing.T) {
	buf := initBuffer(t, false)

	op := StartOperation(context.Background(), "dashboard.Render", "ticker", "AAPL")
	op.End("bars", 3)
	StartOperation(context.Background(), "dashboard.Render").EndWithError(errors.New("earnings failed"))

	got := lines(buf)
	if len(got) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(got), buf.String())
	}
	if got[0]["msg"] != "Operation completed" || got[0]["operation"] != "dashboard.Render" {
		t.Errorf("unexpected completion line %v", got[0])
	}
	if _, ok := got[0]["duration_ms"]; !ok {
		t.Error("missing duration_ms")
	}
	if got[1]["msg"] != "Operation failed" || got[1]["error"] != "earnings failed" {
		t.Errorf("unexpected failure line %v", got[1])
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("warn").String() != "WARN" || parseLogLevel("bogus").String() != "INFO" {
		t.Error("parseLogLevel mismatch")
	}
}
