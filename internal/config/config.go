// Package config загружает конфигурацию CLI commonlog из YAML файла
// и переменных окружения CL_* (cleanenv). Переменные окружения имеют приоритет.
package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Ошибки загрузки и проверки конфигурации.
var (
	// ErrLoad: файл конфигурации не прочитан или переменные окружения некорректны.
	ErrLoad = errors.New("config: load failed")

	// ErrValidation: конфигурация прочитана, но невалидна.
	ErrValidation = errors.New("config: validation failed")
)

// Config: корневая конфигурация приложения.
type Config struct {
	// Logging: локальный лог (stderr или файл с ротацией).
	Logging LoggingConfig `yaml:"logging"`

	// Alert: провайдер, метод отправки, адреса и каналы.
	Alert AlertConfig `yaml:"alert"`

	// HTTP: параметры HTTP клиента провайдеров.
	HTTP HTTPConfig `yaml:"http"`

	// Redis: хранилище кэша токенов Lark. Пустой адрес означает кэш в памяти.
	Redis RedisConfig `yaml:"redis"`

	// Metrics: Prometheus метрики доставки (Pushgateway).
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing: OpenTelemetry трейсинг отправок.
	Tracing TracingConfig `yaml:"tracing"`
}

// Load читает конфигурацию из path (YAML) и переменных окружения.
// При пустом path используются только переменные окружения и значения по умолчанию.
// Возвращённая конфигурация уже проверена через Validate.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет все секции конфигурации.
// Ошибки оборачивают ErrValidation и исходную ошибку секции.
func (c *Config) Validate() error {
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("%w: logging: %w", ErrValidation, err)
	}

	ac, err := c.AlertConfig()
	if err != nil {
		return fmt.Errorf("%w: alert: %w", ErrValidation, err)
	}
	if err := ac.Validate(); err != nil {
		return fmt.Errorf("%w: alert: %w", ErrValidation, err)
	}

	if err := c.HTTP.validate(); err != nil {
		return fmt.Errorf("%w: http: %w", ErrValidation, err)
	}

	mc := c.Metrics.ToMetrics()
	if err := mc.Validate(); err != nil {
		return fmt.Errorf("%w: metrics: %w", ErrValidation, err)
	}

	tc := c.Tracing.ToTracing()
	if err := tc.Validate(); err != nil {
		return fmt.Errorf("%w: tracing: %w", ErrValidation, err)
	}
	return nil
}

// Description возвращает справку по переменным окружения для --help.
func Description() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}
