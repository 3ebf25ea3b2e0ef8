//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/commonlog/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры приложения.
//
// При добавлении новых провайдеров:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOutputWriter,
	ProvideTokenCache,
	ProvideMetricsCollector,
	ProvideTracing,
	ProvideCommonlog,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт App из проверенной конфигурации (config.Load) и формата вывода.
// Возвращённая cleanup функция освобождает внешние ресурсы (Redis).
//
// Wire генерирует реализацию этой функции в wire_gen.go.
func InitializeApp(cfg *config.Config, format OutputFormat) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
