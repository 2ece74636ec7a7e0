package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	logger := slog.Default()
	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected logger from context")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("expected nil logger for bare context, got %v", got)
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("expected nil logger to leave context untouched")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "placement").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug line to be filtered, got %q", buf.String())
	}

	New(&buf, slog.LevelInfo, "placement").Info("visible", "key", "value")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if line["app"] != "placement" || line["key"] != "value" {
		t.Fatalf("unexpected log line %v", line)
	}
}
