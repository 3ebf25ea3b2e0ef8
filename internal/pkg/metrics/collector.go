// Package metrics собирает метрики доставки алертов и отправляет их
// в Prometheus Pushgateway.
//
// NewCollector выбирает реализацию по конфигурации: PrometheusCollector
// или NopCollector при отключённых метриках.
package metrics

import (
	"context"
	"time"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

// Collector определяет интерфейс для сбора метрик доставки.
// Реализации: PrometheusCollector (активный) и NopCollector (no-op).
// Collector удовлетворяет commonlog.Recorder и передаётся через commonlog.WithRecorder.
type Collector interface {
	// RecordDelivery записывает результат одной попытки доставки.
	// err == nil означает успешную доставку.
	RecordDelivery(p alert.ProviderID, method alert.SendMethod, level alert.Level, duration time.Duration, err error)

	// Push отправляет метрики в Pushgateway.
	// Всегда возвращает nil: ошибки отправки логируются внутри реализации.
	Push(ctx context.Context) error
}

// NewCollector возвращает PrometheusCollector для включённых метрик
// и NopCollector для отключённых.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		logger.Debug("метрики доставки отключены")
		return NewNopCollector(), nil
	}
	return NewPrometheusCollector(config, logger)
}
