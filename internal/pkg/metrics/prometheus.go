package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Kargones/commonlog/internal/pkg/urlutil"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

const namespace = "commonlog"

// Значения label status и reason.
const (
	statusDelivered = "delivered"
	statusFailed    = "failed"

	reasonTransport   = "transport"
	reasonToken       = "token"
	reasonChat        = "chat_not_found"
	reasonCache       = "cache"
	reasonUnsupported = "unsupported"
	reasonConfig      = "config"
	reasonOther       = "other"
)

// PrometheusCollector реализует Collector с Prometheus метриками.
// Отправляет метрики в Pushgateway при вызове Push().
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	deliveryDuration *prometheus.HistogramVec
	delivered        *prometheus.CounterVec
	failed           *prometheus.CounterVec

	instance string
}

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - commonlog_delivery_duration_seconds (histogram)
//   - commonlog_delivered_total (counter)
//   - commonlog_delivery_failed_total (counter, label reason)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	// Запрос к чату обычно укладывается в секунду; верхние buckets для
	// случаев с получением токена и постраничным поиском chat_id.
	deliveryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Duration of alert delivery attempts in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "method", "level", "status"},
	)

	delivered := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivered_total",
			Help:      "Total number of alerts accepted by the chat provider",
		},
		[]string{"provider", "method", "level"},
	)

	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failed_total",
			Help:      "Total number of failed alert deliveries by reason",
		},
		[]string{"provider", "method", "level", "reason"},
	)

	collectors := []prometheus.Collector{deliveryDuration, delivered, failed}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:           config,
		logger:           logger,
		registry:         registry,
		deliveryDuration: deliveryDuration,
		delivered:        delivered,
		failed:           failed,
		instance:         instance,
	}, nil
}

// maxLabelLength: максимальная длина значения label для защиты от cardinality explosion.
const maxLabelLength = 128

// sanitizeLabel обрезает значение label до допустимой длины и удаляет
// контрольные символы (\n, \r, \0), которые могут нарушить Prometheus text format.
// Обрезка выполняется по рунам (не по байтам) для корректной работы с UTF-8.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// failureReason классифицирует ошибку доставки по sentinel ошибкам пакета alert.
func failureReason(err error) string {
	switch {
	case errors.Is(err, alert.ErrTransport):
		return reasonTransport
	case errors.Is(err, alert.ErrTokenFetch):
		return reasonToken
	case errors.Is(err, alert.ErrChatNotFound):
		return reasonChat
	case errors.Is(err, alert.ErrCacheUnavailable):
		return reasonCache
	case errors.Is(err, alert.ErrUnsupportedMethod), errors.Is(err, alert.ErrUnsupportedProvider):
		return reasonUnsupported
	case errors.Is(err, alert.ErrConfiguration):
		return reasonConfig
	default:
		return reasonOther
	}
}

// RecordDelivery записывает результат попытки доставки.
func (c *PrometheusCollector) RecordDelivery(p alert.ProviderID, method alert.SendMethod, level alert.Level, duration time.Duration, err error) {
	provider := sanitizeLabel(string(p))
	m := sanitizeLabel(string(method))
	lvl := level.String()

	status := statusDelivered
	if err != nil {
		status = statusFailed
	}
	c.deliveryDuration.WithLabelValues(provider, m, lvl, status).Observe(duration.Seconds())

	if err != nil {
		c.failed.WithLabelValues(provider, m, lvl, failureReason(err)).Inc()
	} else {
		c.delivered.WithLabelValues(provider, m, lvl).Inc()
	}

	c.logger.Debug("metrics: доставка записана",
		"provider", provider,
		"method", m,
		"level", lvl,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}

// Push отправляет метрики в Pushgateway.
// Возвращает nil даже при ошибке: потеря метрик не должна влиять на результат CLI.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL не задан, push пропущен")
		return nil
	}

	select {
	case <-ctx.Done():
		c.logger.Debug("metrics push отменён")
		return nil
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)
	if c.config.Service != "" {
		pusher = pusher.Grouping("service", sanitizeLabel(c.config.Service))
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// Registry возвращает внутренний registry (для тестов и локального /metrics).
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}
