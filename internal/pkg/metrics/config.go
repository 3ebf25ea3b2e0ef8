package metrics

import (
	"errors"
	"net/url"
	"time"
)

// Ошибки Config.Validate. Validate объединяет их через errors.Join,
// поэтому одна проверка сообщает обо всех проблемах сразу.
var (
	ErrPushgatewayURLRequired = errors.New("metrics: pushgateway url is required when metrics are enabled")
	ErrPushgatewayURLInvalid  = errors.New("metrics: pushgateway url must have scheme and host")
	ErrJobNameRequired        = errors.New("metrics: job name is required")
	ErrInvalidTimeout         = errors.New("metrics: push timeout must be positive")
)

const (
	defaultJobName = "commonlog"
	defaultTimeout = 10 * time.Second
)

// Config: параметры метрик доставки алертов.
type Config struct {
	Enabled bool

	// PushgatewayURL, например "http://pushgateway:9091".
	PushgatewayURL string

	// JobName группирует метрики в Pushgateway.
	JobName string

	// Timeout ограничивает один push.
	Timeout time.Duration

	// InstanceLabel заменяет hostname в grouping key "instance".
	InstanceLabel string

	// Service добавляется в grouping key "service", чтобы push от разных
	// сервисов с одного хоста не перезаписывали друг друга.
	Service string
}

// Validate проверяет конфигурацию. Отключённые метрики всегда валидны.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var errs []error
	if c.PushgatewayURL == "" {
		errs = append(errs, ErrPushgatewayURLRequired)
	} else if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ErrPushgatewayURLInvalid)
	}
	if c.JobName == "" {
		errs = append(errs, ErrJobNameRequired)
	}
	if c.Timeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	return errors.Join(errs...)
}

// DefaultConfig возвращает отключённую конфигурацию со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{JobName: defaultJobName, Timeout: defaultTimeout}
}
