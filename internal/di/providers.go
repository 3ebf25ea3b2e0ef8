package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kargones/commonlog/internal/config"
	"github.com/Kargones/commonlog/internal/pkg/metrics"
	"github.com/Kargones/commonlog/internal/pkg/output"
	"github.com/Kargones/commonlog/internal/pkg/tracing"
	"github.com/Kargones/commonlog/pkg/commonlog"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/commonlog/provider"
	"github.com/Kargones/commonlog/pkg/commonlog/tokencache"
	"github.com/Kargones/commonlog/pkg/logging"
)

// OutputFormat: формат вывода результата команды (text или json).
// Отдельный тип нужен Wire, чтобы не путать его с другими строками графа.
type OutputFormat string

// redisPingTimeout ограничивает проверку доступности Redis при старте.
const redisPingTimeout = 3 * time.Second

// ProvideLogger создаёт Logger на основе секции logging.
// При nil Config используется logging.DefaultConfig().
func ProvideLogger(cfg *config.Config) logging.Logger {
	if cfg == nil {
		return logging.NewLogger(logging.DefaultConfig())
	}
	return logging.NewLogger(cfg.Logging.ToLogging())
}

// ProvideOutputWriter создаёт Writer для указанного формата.
// Пустой или неизвестный формат даёт TextWriter.
func ProvideOutputWriter(format OutputFormat) output.Writer {
	return output.NewWriter(string(format))
}

// ProvideTokenCache создаёт кэш токенов Lark.
//
// При заданном redis.addr используется RedisStore; недоступность Redis при старте
// только логируется, ошибка проявится при первой отправке через webclient.
// Без адреса используется MemoryStore процесса.
// Возвращённая cleanup функция закрывает соединение с Redis.
func ProvideTokenCache(cfg *config.Config, logger logging.Logger) (*tokencache.Cache, func()) {
	if cfg == nil || !cfg.Redis.UsesRedis() {
		return tokencache.New(tokencache.NewMemoryStore(), logger), func() {}
	}

	store := tokencache.NewRedisStore(cfg.Redis.ToRedis())

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		logger.Warn("Redis недоступен, токены Lark не будут кэшироваться до восстановления",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()),
		)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("ошибка закрытия Redis", slog.String("error", err.Error()))
		}
	}
	return tokencache.New(store, logger), cleanup
}

// ProvideMetricsCollector создаёт Collector на основе секции metrics.
// При ошибке создания возвращает NopCollector и логирует ошибку.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil {
		return metrics.NewNopCollector()
	}

	mc := cfg.Metrics.ToMetrics()
	mc.Service = cfg.Alert.ServiceName

	collector, err := metrics.NewCollector(mc, logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracing создаёт OTel Provider на основе секции tracing.
// При ошибке инициализации возвращает nop provider и логирует ошибку.
func ProvideTracing(cfg *config.Config, logger logging.Logger) *tracing.Provider {
	if cfg == nil {
		return tracing.NewNopProvider()
	}

	tp, err := tracing.NewProvider(cfg.Tracing.ToTracing(), logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopProvider()
	}
	return tp
}

// ProvideCommonlog собирает фасад отправки алертов: конфигурация из секции alert,
// HTTP параметры из секции http, общий кэш токенов, метрики и tracer.
func ProvideCommonlog(
	cfg *config.Config,
	logger logging.Logger,
	cache *tokencache.Cache,
	collector metrics.Collector,
	tp *tracing.Provider,
) (*commonlog.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: конфигурация не задана", alert.ErrConfiguration)
	}
	ac, err := cfg.AlertConfig()
	if err != nil {
		return nil, err
	}

	return commonlog.New(ac,
		commonlog.WithLogger(logger),
		commonlog.WithRecorder(collector),
		commonlog.WithProviderOptions(
			provider.WithTimeout(cfg.HTTP.Timeout),
			provider.WithProxyURL(cfg.HTTP.ProxyURL),
			provider.WithRateLimit(cfg.HTTP.RatePerSec, cfg.HTTP.RateBurst),
			provider.WithTokenCache(cache),
			provider.WithTracer(tp.Tracer()),
		),
	)
}
