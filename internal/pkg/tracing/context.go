package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

type traceIDKey struct{}

// WithTraceID возвращает context с trace ID вызова.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext извлекает trace ID из context.
// Возвращает пустую строку если trace ID не установлен.
//
//	logger.With("trace_id", tracing.TraceIDFromContext(ctx)).Info("алерт отправлен")
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ContextWithOTelTraceID кладёт в context remote span context с указанным
// trace ID, чтобы span-ы доставки имели тот же trace_id, что и локальные логи.
// Невалидный traceIDHex возвращает ctx без изменений.
func ContextWithOTelTraceID(ctx context.Context, traceIDHex string) context.Context {
	traceID, err := trace.TraceIDFromHex(traceIDHex)
	if err != nil {
		return ctx
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

// StartCall создаёт trace ID, кладёт его в context и связывает с OTel.
func StartCall(ctx context.Context) (context.Context, string) {
	id := GenerateTraceID()
	return ContextWithOTelTraceID(WithTraceID(ctx, id), id), id
}
