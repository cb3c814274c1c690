package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestNewWritesJSONAboveLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "venue_id", "v1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["venue_id"] != "v1" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger without attachment")
	}
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("expected nil logger to leave the context unchanged")
	}
}

func TestScoped(t *testing.T) {
	t.Parallel()

	var fallbackBuf, requestBuf bytes.Buffer
	fallback := New(&fallbackBuf, "info")
	request := New(&requestBuf, "info").With("request_id", "req-1")

	Scoped(context.Background(), fallback, "service", "Facade").Info("without request")
	Scoped(ContextWithLogger(context.Background(), request), fallback, "service", "Facade").Info("with request")

	var entry map[string]any
	if err := json.Unmarshal(fallbackBuf.Bytes(), &entry); err != nil || entry["service"] != "Facade" {
		t.Fatalf("expected fallback entry with service attr, got %q (%v)", fallbackBuf.String(), err)
	}
	entry = nil
	if err := json.Unmarshal(requestBuf.Bytes(), &entry); err != nil || entry["request_id"] != "req-1" || entry["service"] != "Facade" {
		t.Fatalf("expected request entry to keep request_id, got %q (%v)", requestBuf.String(), err)
	}
	if OrDefault(nil) != slog.Default() {
		t.Fatal("expected slog.Default for a nil logger")
	}
}
