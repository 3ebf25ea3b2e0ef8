package config

import (
	"time"

	"github.com/Kargones/commonlog/internal/constants"
	"github.com/Kargones/commonlog/internal/pkg/tracing"
)

// TracingConfig содержит настройки OpenTelemetry трейсинга.
type TracingConfig struct {
	// Enabled включает отправку трейсов в OTLP бэкенд.
	Enabled bool `yaml:"enabled" env:"CL_TRACING_ENABLED"`

	// Endpoint: URL OTLP HTTP endpoint (например, http://jaeger:4318).
	Endpoint string `yaml:"endpoint" env:"CL_TRACING_ENDPOINT"`

	// Headers задаёт заголовки OTLP запросов, например Authorization:Bearer xyz,X-Scope-OrgID:ops.
	Headers map[string]string `yaml:"headers" env:"CL_TRACING_HEADERS"`

	// ServiceName: имя сервиса для resource attributes.
	ServiceName string `yaml:"serviceName" env:"CL_TRACING_SERVICE_NAME" env-default:"commonlog"`

	// Environment: окружение (production, staging, development).
	Environment string `yaml:"environment" env:"CL_TRACING_ENVIRONMENT" env-default:"production"`

	// Insecure: использовать HTTP вместо HTTPS для OTLP endpoint.
	Insecure bool `yaml:"insecure" env:"CL_TRACING_INSECURE"`

	// Timeout: таймаут для экспорта трейсов.
	Timeout time.Duration `yaml:"timeout" env:"CL_TRACING_TIMEOUT" env-default:"5s"`

	// SamplingRate: доля сэмплируемых трейсов (0.0, ни один, 1.0, все).
	// Как и у Compress, нулевое значение в YAML заменяется env-default.
	SamplingRate float64 `yaml:"samplingRate" env:"CL_TRACING_SAMPLING_RATE" env-default:"1.0"`
}

// ToTracing преобразует секцию в tracing.Config. Version берётся из constants.Version.
func (c TracingConfig) ToTracing() tracing.Config {
	return tracing.Config{
		Enabled:      c.Enabled,
		Endpoint:     c.Endpoint,
		Headers:      c.Headers,
		ServiceName:  c.ServiceName,
		Version:      constants.Version,
		Environment:  c.Environment,
		Insecure:     c.Insecure,
		Timeout:      c.Timeout,
		SamplingRate: c.SamplingRate,
	}
}
