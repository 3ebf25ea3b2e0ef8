// Package commonlog: единая точка отправки алертов в Slack и Lark.
//
// Logger выбирает канал по уровню, объединяет trace с вложением и передаёт
// сообщение провайдеру. Алерты уровня INFO только пишутся в локальный лог.
//
//	l, err := commonlog.New(alert.Config{
//		Provider:    alert.ProviderSlack,
//		SendMethod:  alert.MethodWebhook,
//		WebhookURL:  os.Getenv("SLACK_WEBHOOK_URL"),
//		ServiceName: "billing",
//		Environment: "production",
//	}, commonlog.WithLogger(logger))
//	...
//	err = l.Send(ctx, alert.LevelError, "платёж не прошёл", nil, stack)
package commonlog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/commonlog/provider"
	"github.com/Kargones/commonlog/pkg/logging"
)

// Recorder получает результат каждой попытки доставки (метрики).
type Recorder interface {
	RecordDelivery(p alert.ProviderID, method alert.SendMethod, level alert.Level, duration time.Duration, err error)
}

// Logger отправляет алерты. Конфигурация неизменяема после New,
// поэтому Logger безопасен для конкурентного использования.
type Logger struct {
	cfg      alert.Config
	primary  provider.Provider
	logger   logging.Logger
	recorder Recorder

	providerOpts []provider.Option

	mu     sync.Mutex
	extras map[alert.ProviderID]provider.Provider
}

// Option настраивает Logger.
type Option func(*Logger)

// WithLogger задаёт локальный логгер. По умолчанию NopLogger.
func WithLogger(l logging.Logger) Option {
	return func(lg *Logger) { lg.logger = l }
}

// WithRecorder задаёт получателя метрик доставки.
func WithRecorder(r Recorder) Option {
	return func(lg *Logger) { lg.recorder = r }
}

// WithProvider подменяет основного провайдера.
func WithProvider(p provider.Provider) Option {
	return func(lg *Logger) { lg.primary = p }
}

// WithProviderOptions передаёт опции провайдерам, которые создаёт Logger
// (основному и тем, что нужны для CustomSend).
func WithProviderOptions(opts ...provider.Option) Option {
	return func(lg *Logger) { lg.providerOpts = append(lg.providerOpts, opts...) }
}

// New проверяет конфигурацию и создаёт Logger.
func New(cfg alert.Config, opts ...Option) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		cfg:    cfg,
		extras: make(map[alert.ProviderID]provider.Provider),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logging.NewNopLogger()
	}

	if l.primary == nil {
		p, err := provider.New(cfg.Provider, l.withLogger(l.providerOpts)...)
		if err != nil {
			return nil, err
		}
		l.primary = p
	}

	return l, nil
}

// Config возвращает копию конфигурации.
func (l *Logger) Config() alert.Config {
	return l.cfg
}

// Send отправляет алерт в канал, выбранный резолвером (или Config.Channel).
// trace, если не пуст, объединяется с вложением (см. alert.MergeTrace).
// INFO только пишется в локальный лог.
func (l *Logger) Send(ctx context.Context, level alert.Level, message string, att *alert.Attachment, trace string) error {
	return l.dispatch(ctx, l.primary, level, message, att, trace, "")
}

// SendToChannel работает как Send, но непустой channel имеет приоритет над резолвером.
func (l *Logger) SendToChannel(ctx context.Context, level alert.Level, message string, att *alert.Attachment, trace, channel string) error {
	return l.dispatch(ctx, l.primary, level, message, att, trace, channel)
}

// CustomSend отправляет алерт через другого провайдера с той же конфигурацией.
// Неизвестный провайдер возвращает *alert.UnsupportedProviderError.
func (l *Logger) CustomSend(ctx context.Context, id alert.ProviderID, level alert.Level, message string, att *alert.Attachment, trace, channel string) error {
	p, err := l.providerFor(id)
	if err != nil {
		l.logger.Error("не удалось отправить алерт", "provider", string(id), "error", err.Error())
		return err
	}
	return l.dispatch(ctx, p, level, message, att, trace, channel)
}

func (l *Logger) dispatch(ctx context.Context, p provider.Provider, level alert.Level, message string, att *alert.Attachment, trace, channel string) error {
	if !level.Transmitted() {
		l.logLocal(level, message, att, trace)
		return nil
	}

	if channel == "" {
		channel = l.resolveChannel(level)
	}
	att = alert.MergeTrace(att, trace)

	snapshot := l.cfg.WithChannel(channel)
	snapshot.Provider = p.Name()

	log := l.logger.With(
		"delivery_id", uuid.NewString(),
		"provider", string(p.Name()),
		"method", string(snapshot.SendMethod),
		"channel", channel,
		"level", level.String(),
	)
	if snapshot.Debug {
		log.Debug("отправка алерта", "has_attachment", att != nil)
	}

	start := time.Now()
	err := p.Send(ctx, level, message, att, snapshot)
	duration := time.Since(start)

	if l.recorder != nil {
		l.recorder.RecordDelivery(p.Name(), snapshot.SendMethod, level, duration, err)
	}

	if err != nil {
		log.Error("не удалось отправить алерт", "error", err.Error(), "duration_ms", duration.Milliseconds())
		return err
	}

	log.Info("алерт отправлен", "duration_ms", duration.Milliseconds())
	return nil
}

// resolveChannel: резолвер, если задан, иначе Config.Channel.
func (l *Logger) resolveChannel(level alert.Level) string {
	if l.cfg.ChannelResolver != nil {
		return l.cfg.ChannelResolver.ResolveChannel(level)
	}
	return l.cfg.Channel
}

func (l *Logger) logLocal(level alert.Level, message string, att *alert.Attachment, trace string) {
	args := []any{"level", level.String()}
	if l.cfg.ServiceName != "" {
		args = append(args, "service", l.cfg.ServiceName)
	}
	if l.cfg.Environment != "" {
		args = append(args, "environment", l.cfg.Environment)
	}
	if att != nil && att.URL != "" {
		args = append(args, "attachment_url", att.URL)
	}
	if trace != "" {
		args = append(args, "trace", trace)
	}
	l.logger.Info(message, args...)
}

func (l *Logger) providerFor(id alert.ProviderID) (provider.Provider, error) {
	if id == l.primary.Name() {
		return l.primary, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.extras[id]; ok {
		return p, nil
	}
	p, err := provider.New(id, l.withLogger(l.providerOpts)...)
	if err != nil {
		return nil, err
	}
	l.extras[id] = p
	return p, nil
}

// withLogger добавляет локальный логгер к опциям провайдера,
// если вызывающий код не передал свой.
func (l *Logger) withLogger(opts []provider.Option) []provider.Option {
	out := make([]provider.Option, 0, len(opts)+1)
	out = append(out, provider.WithLogger(l.logger))
	return append(out, opts...)
}
