package di

import (
	"github.com/Kargones/commonlog/internal/config"
	"github.com/Kargones/commonlog/internal/pkg/metrics"
	"github.com/Kargones/commonlog/internal/pkg/output"
	"github.com/Kargones/commonlog/internal/pkg/tracing"
	"github.com/Kargones/commonlog/pkg/commonlog"
	"github.com/Kargones/commonlog/pkg/commonlog/tokencache"
	"github.com/Kargones/commonlog/pkg/logging"
)

// App содержит инициализированные зависимости CLI.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит проверенную конфигурацию.
	Config *config.Config

	// Logger: локальный структурированный лог.
	Logger logging.Logger

	// Alerts отправляет алерты в Slack или Lark.
	Alerts *commonlog.Logger

	// TokenCache хранит tenant access token Lark между отправками.
	TokenCache *tokencache.Cache

	// MetricsCollector собирает метрики доставки и отправляет их в Pushgateway.
	// Если метрики отключены, используется NopCollector.
	MetricsCollector metrics.Collector

	// Tracing владеет OTel TracerProvider. Shutdown отправляет буферизированные span-ы.
	Tracing *tracing.Provider

	// OutputWriter форматирует результат команды.
	OutputWriter output.Writer
}
