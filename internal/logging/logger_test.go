package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupWriter_JSONWithRequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "json")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "run_id", "abc").Info("validation finished")
	FromContext(ctx).Debug("dropped below level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", entry["run_id"])
	}
}

func TestSetupWriter_Text(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "debug", "text")
	FromContext(context.Background()).Debug("hello", "rows", 3)

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "rows=3") {
		t.Errorf("text output = %q", out)
	}
	if strings.Contains(out, "request_id") {
		t.Errorf("request_id should be absent without chi context: %q", out)
	}
}
