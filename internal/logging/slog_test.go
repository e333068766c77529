package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New("debug", "text", &buf), &buf
}

func TestSlogLogger_Levels_WriteExpectedOutput(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()

	tests := []struct {
		level string
		msg   string
		key   string
		val   string
	}{
		{"DEBUG", "dbg", "a", "1"},
		{"INFO", "inf", "b", "2"},
		{"WARN", "wrn", "c", "3"},
		{"ERROR", "err", "d", "4"},
	}

	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Fatalf("expected line with level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Fatalf("expected line with msg=%q in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.key+"="+tc.val) {
			t.Fatalf("expected attribute %s=%s in output:\n%s", tc.key, tc.val, out)
		}
	}
}

func TestSlogLogger_With_AddsAttributes(t *testing.T) {
	log, buf := newTestLogger(t)

	log.With("component", "grid", "user", "alice").Info(context.Background(), "hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "component=grid", "user=alice", "k=v"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected %q in output, got:\n%s", s, out)
		}
	}
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", "text", &buf)

	log.Info(context.Background(), "quiet")
	log.Warn(context.Background(), "loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info record should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn record missing:\n%s", out)
	}
}

func TestNew_JSONFormatAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	log.Info(ctx, "fetched", "rows", 20)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["request_id"] != "req-42" {
		t.Fatalf("request_id = %v, want req-42", rec["request_id"])
	}
	if rec["msg"] != "fetched" {
		t.Fatalf("msg = %v", rec["msg"])
	}
}

func TestRequestID_AbsentOrEmpty(t *testing.T) {
	if _, ok := RequestID(context.Background()); ok {
		t.Fatal("expected no request id on empty context")
	}
	if _, ok := RequestID(WithRequestID(context.Background(), "")); ok {
		t.Fatal("empty request id must be treated as absent")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"noise": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDiscard_DoesNotPanic(t *testing.T) {
	ctx := context.TODO()
	log := Discard()
	log.Debug(ctx, "ctx-ok")
	log.Info(ctx, "ctx-ok")
	log.Warn(ctx, "ctx-ok")
	log.Error(ctx, "ctx-ok")
	log.With("a", 1).Info(ctx, "ctx-ok")
}
