package config

import (
	"time"

	"github.com/Kargones/commonlog/internal/pkg/metrics"
)

// MetricsConfig содержит настройки для Prometheus метрик доставки.
type MetricsConfig struct {
	// Enabled: включены ли метрики (по умолчанию false).
	Enabled bool `yaml:"enabled" env:"CL_METRICS_ENABLED"`

	// PushgatewayURL: URL Prometheus Pushgateway, например "http://pushgateway:9091".
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"CL_METRICS_PUSHGATEWAY_URL"`

	// JobName: имя job для группировки метрик.
	JobName string `yaml:"jobName" env:"CL_METRICS_JOB_NAME" env-default:"commonlog"`

	// Timeout: таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration `yaml:"timeout" env:"CL_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel: переопределение instance label. Если пусто, hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"CL_METRICS_INSTANCE"`
}

// ToMetrics преобразует секцию в metrics.Config.
func (c MetricsConfig) ToMetrics() metrics.Config {
	return metrics.Config{
		Enabled:        c.Enabled,
		PushgatewayURL: c.PushgatewayURL,
		JobName:        c.JobName,
		Timeout:        c.Timeout,
		InstanceLabel:  c.InstanceLabel,
	}
}
