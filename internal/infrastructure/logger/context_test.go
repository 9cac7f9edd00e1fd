package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_FallsBackToNop(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
}

func TestContextValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestL_AddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithUserID(ctx, "user-7")

	L(ctx).Info("marked paid", zap.String("order_id", "o-1"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "user-7", fields["user_id"])
		assert.Equal(t, "o-1", fields["order_id"])
		assert.NotContains(t, fields, "trace_id")
	}
}

func TestL_IncludesTraceFromSpanContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)
	ctx = WithContext(ctx, zap.New(core))

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))

	L(ctx).Warn("slow render")
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	}
}

func TestContextLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	cl := L(ctx).With(zap.String("component", "invoice"))
	cl.Error("render failed")
	cl.Debug("chunk written")

	entries := logs.All()
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "invoice", e.ContextMap()["component"])
	}
}
