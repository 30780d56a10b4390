package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns nop logger when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetAdminID(ctx))
	assert.Empty(t, GetOperation(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithAdminID(ctx, "admin")
	ctx = WithOperation(ctx, "manual_connect")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "admin", GetAdminID(ctx))
	assert.Equal(t, "manual_connect", GetOperation(ctx))
}

func TestL(t *testing.T) {
	t.Run("adds correlation fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		ctx := WithContext(context.Background(), zap.New(core))
		ctx = WithRequestID(ctx, "req-42")
		ctx = WithOperation(ctx, "auto_connect")

		L(ctx).Info("verifying", zap.String("domain", "shop.example.com"))

		require.Equal(t, 1, recorded.Len())
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "auto_connect", fields["operation"])
		assert.Equal(t, "shop.example.com", fields["domain"])
		assert.NotContains(t, fields, "trace_id")
	})

	t.Run("adds trace ids from an active span context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		WithLogger(ctx, zap.New(core)).With(zap.String("component", "scheduler")).Warn("check failed")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
		assert.Equal(t, "scheduler", fields["component"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
		assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		assert.NotPanics(t, func() {
			WithLogger(context.Background(), nil).Error("dropped")
		})
	})
}
