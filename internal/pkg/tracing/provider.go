// Package tracing настраивает OpenTelemetry для отправок commonlog:
// TracerProvider с OTLP HTTP экспортом, sampler и связку trace ID
// локальных логов с экспортируемыми span-ами.
package tracing

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/commonlog/pkg/logging"
)

// TracerName: имя instrumentation scope для span-ов доставки.
const TracerName = "github.com/Kargones/commonlog"

// Provider хранит tracer и функцию завершения экспорта.
// Provider не регистрируется глобально: tracer передаётся провайдерам
// алертов явно (provider.WithTracer).
type Provider struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// Tracer возвращает tracer для span-ов доставки.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown сбрасывает буферизованные span-ы и останавливает экспорт.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}

// Option настраивает NewProvider.
type Option func(*providerOptions)

type providerOptions struct {
	exporter sdktrace.SpanExporter
}

// WithExporter подменяет OTLP exporter (например, tracetest.InMemoryExporter).
// Span-ы такого exporter-а отправляются синхронно.
func WithExporter(e sdktrace.SpanExporter) Option {
	return func(o *providerOptions) { o.exporter = e }
}

// NewProvider создаёт Provider по конфигурации.
// Если трейсинг выключен, возвращает nop Provider.
// При включённом трейсинге span-ы экспортируются в OTLP HTTP endpoint
// через BatchSpanProcessor с resource attributes service.name, service.version
// и deployment.environment.
func NewProvider(cfg Config, logger logging.Logger, opts ...Option) (*Provider, error) {
	if !cfg.Enabled {
		logger.Debug("трейсинг выключен, используется nop provider")
		return NewNopProvider(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := providerOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	// NewSchemaless избегает конфликта Schema URL между resource.Default()
	// и semconv v1.26.0.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
	}

	if o.exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithSyncer(o.exporter))
	} else {
		exporter, err := otlptracehttp.New(context.Background(), exporterOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)

	logger.Info("OpenTelemetry трейсинг инициализирован",
		"endpoint", cfg.Endpoint,
		"service_name", cfg.ServiceName,
		"environment", cfg.Environment,
		"sampling_rate", cfg.SamplingRate,
	)

	return &Provider{
		tracer:   tp.Tracer(TracerName),
		shutdown: tp.Shutdown,
	}, nil
}

// exporterOptions разбирает endpoint: otlptracehttp.WithEndpoint принимает
// только host:port, путь передаётся отдельно через WithURLPath.
func exporterOptions(cfg Config) []otlptracehttp.Option {
	host := cfg.Endpoint
	path := ""
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		host = u.Host
		if u.Path != "" && u.Path != "/" {
			path = u.Path
		}
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(host),
		otlptracehttp.WithTimeout(cfg.Timeout),
	}
	if path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(path))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	return opts
}

// newSampler создаёт sampler на основе SamplingRate.
// Root span-ы и span-ы с sampled remote parent решаются по TraceIDRatioBased;
// local parent наследует решение. ContextWithOTelTraceID ставит FlagsSampled
// на каждый вызов CLI, поэтому стандартный AlwaysSample для remote parent
// свёл бы rate к 1.0.
func newSampler(rate float64) sdktrace.Sampler {
	return sdktrace.ParentBased(
		sdktrace.TraceIDRatioBased(rate),
		sdktrace.WithRemoteParentSampled(sdktrace.TraceIDRatioBased(rate)),
	)
}
