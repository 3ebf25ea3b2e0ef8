package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Ошибки Config.Validate.
var (
	ErrTracingEndpointRequired      = errors.New("tracing: endpoint is required when tracing is enabled")
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint must be an http(s) url, e.g. http://jaeger:4318")
	ErrTracingServiceNameRequired   = errors.New("tracing: service name is required")
	ErrTracingTimeoutInvalid        = errors.New("tracing: export timeout must be positive")
	ErrTracingSamplingRateInvalid   = errors.New("tracing: sampling rate must be within [0, 1]")
)

// Config: параметры экспорта span-ов доставки алертов по OTLP/HTTP.
type Config struct {
	Enabled bool

	// Endpoint: адрес коллектора, путь в URL заменяет /v1/traces.
	Endpoint string

	// Headers передаются с каждым экспортом (например, токен коллектора).
	Headers map[string]string

	// ServiceName, Version и Environment попадают в resource attributes.
	ServiceName string
	Version     string
	Environment string

	// Insecure отключает TLS при экспорте.
	Insecure bool

	Timeout time.Duration

	// SamplingRate задаёт долю записываемых вызовов от 0 (ни одного) до 1 (все).
	SamplingRate float64
}

// Validate проверяет конфигурацию. Отключённый трейсинг всегда валиден.
// Все найденные проблемы объединяются через errors.Join.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	switch u, err := url.Parse(c.Endpoint); {
	case c.Endpoint == "":
		errs = append(errs, ErrTracingEndpointRequired)
	case err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https"):
		errs = append(errs, ErrTracingEndpointInvalidFormat)
	}
	if c.ServiceName == "" {
		errs = append(errs, ErrTracingServiceNameRequired)
	}
	if c.Timeout <= 0 {
		errs = append(errs, ErrTracingTimeoutInvalid)
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("%w: got %g", ErrTracingSamplingRateInvalid, c.SamplingRate))
	}
	return errors.Join(errs...)
}

// DefaultConfig возвращает выключенный трейсинг со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		ServiceName:  "commonlog",
		Environment:  "production",
		Timeout:      5 * time.Second,
		SamplingRate: 1,
	}
}
