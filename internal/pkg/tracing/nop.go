package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace/noop"
)

// NewNopProvider возвращает Provider с noop tracer.
// Используется когда трейсинг выключен.
func NewNopProvider() *Provider {
	return &Provider{
		tracer:   noop.NewTracerProvider().Tracer(TracerName),
		shutdown: func(context.Context) error { return nil },
	}
}
