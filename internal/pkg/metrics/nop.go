package metrics

import (
	"context"
	"time"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

// NopCollector: no-op реализация Collector.
// Используется когда метрики отключены (Config.Enabled = false).
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordDelivery: no-op.
func (c *NopCollector) RecordDelivery(alert.ProviderID, alert.SendMethod, alert.Level, time.Duration, error) {
}

// Push: no-op, всегда возвращает nil.
func (c *NopCollector) Push(context.Context) error {
	return nil
}
