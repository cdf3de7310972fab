package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_InfoContextAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "round processed", "round", 9, "error", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["round"] != int64(9) {
		t.Fatalf("unexpected round field: %#v", fields["round"])
	}
	if fields["trace_id"] != traceID.String() {
		t.Fatalf("unexpected trace_id: %#v", fields["trace_id"])
	}
	if fields["span_id"] != spanID.String() {
		t.Fatalf("unexpected span_id: %#v", fields["span_id"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("unexpected error field: %#v", fields["error"])
	}
}

func TestLogger_OddArgsAndLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core)).Named("elimination").With("cycle", 2)

	logger.Info("dropped")
	logger.Warn("kept", "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry after level filter, got %d", len(entries))
	}
	if entries[0].LoggerName != "elimination" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
	fields := entries[0].ContextMap()
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept, got %v", fields)
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected nop logger from nil With")
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync nil logger: %v", err)
	}
}

func TestLogger_MirrorReceivesContextRecords(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	var got []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.DebugContext(context.Background(), "filtered")
	logger.WarnContext(context.Background(), "stale snapshot served", "round", 9)
	logger.Info("plain records are not mirrored")

	if len(got) != 1 || got[0] != "warn:stale snapshot served" {
		t.Fatalf("unexpected mirrored records: %v", got)
	}
}
