// Package pasarpolis: готовый клиент алертов для сервисов Pasarpolis:
// каналы по окружению, webhook из переменных окружения, короткие методы SendWarn/SendError.
package pasarpolis

import (
	"context"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/commonlog/pkg/commonlog"
	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

// Environment: окружение развёртывания.
type Environment string

const (
	EnvDev        Environment = "dev"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
	EnvUnittest   Environment = "unittest"
)

// unittestWebhookURL подставляется в окружении unittest: отправки там нет,
// но конфигурация должна проходить валидацию.
const unittestWebhookURL = "https://unittest.invalid/webhook"

// envConfig: переменные окружения с адресами webhook.
type envConfig struct {
	LarkWebhookURL  string `env:"PASARPOLIS_LARK_WEBHOOK_URL"`
	SlackWebhookURL string `env:"PASARPOLIS_SLACK_WEBHOOK_URL"`
}

// Client отправляет алерты с настройками Pasarpolis по умолчанию.
// В окружении unittest алерты только пишутся в локальный лог.
type Client struct {
	alerts *commonlog.Logger
	config alert.Config
	local  logging.Logger
}

type clientOptions struct {
	logger logging.Logger
	extra  []commonlog.Option
}

// Option настраивает Client.
type Option func(*clientOptions)

// WithLogger задаёт локальный логгер.
func WithLogger(l logging.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithCommonlogOptions передаёт опции в commonlog.New (HTTP клиент, метрики и т.п.).
func WithCommonlogOptions(opts ...commonlog.Option) Option {
	return func(o *clientOptions) { o.extra = append(o.extra, opts...) }
}

// NewClient создаёт клиента для сервиса в окружении env.
// Адрес webhook берётся из PASARPOLIS_LARK_WEBHOOK_URL или PASARPOLIS_SLACK_WEBHOOK_URL;
// если переменная не задана (кроме unittest), возвращается ошибка alert.ErrConfiguration.
func NewClient(serviceName string, env Environment, provider alert.ProviderID, opts ...Option) (*Client, error) {
	return NewClientWithConfig(serviceName, env, provider, nil, opts...)
}

// NewClientWithConfig создаёт клиента и позволяет изменить конфигурацию
// перед созданием commonlog.Logger (например, сменить метод отправки).
func NewClientWithConfig(serviceName string, env Environment, provider alert.ProviderID, modify func(*alert.Config), opts ...Option) (*Client, error) {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}

	cfg, err := defaultConfig(serviceName, env, provider)
	if err != nil {
		return nil, err
	}
	if modify != nil {
		modify(&cfg)
	}

	alerts, err := commonlog.New(cfg, append([]commonlog.Option{commonlog.WithLogger(o.logger)}, o.extra...)...)
	if err != nil {
		return nil, fmt.Errorf("pasarpolis: %w", err)
	}

	return &Client{alerts: alerts, config: cfg, local: o.logger}, nil
}

func defaultConfig(serviceName string, env Environment, provider alert.ProviderID) (alert.Config, error) {
	cfg := alert.Config{
		Provider:        provider,
		SendMethod:      alert.MethodWebhook,
		ServiceName:     serviceName,
		Environment:     string(env),
		ChannelResolver: DefaultChannelResolver(env),
	}

	var vars envConfig
	if err := cleanenv.ReadEnv(&vars); err != nil {
		return cfg, fmt.Errorf("%w: чтение переменных окружения: %v", alert.ErrConfiguration, err)
	}

	var url, name string
	switch provider {
	case alert.ProviderLark:
		url, name = vars.LarkWebhookURL, "PASARPOLIS_LARK_WEBHOOK_URL"
	case alert.ProviderSlack:
		url, name = vars.SlackWebhookURL, "PASARPOLIS_SLACK_WEBHOOK_URL"
	default:
		return cfg, &alert.UnsupportedProviderError{Provider: provider}
	}

	switch {
	case env == EnvUnittest:
		cfg.WebhookURL = unittestWebhookURL
	case url == "":
		return cfg, fmt.Errorf("%w: переменная окружения %s не задана", alert.ErrConfiguration, name)
	default:
		cfg.WebhookURL = url
	}
	return cfg, nil
}

// DefaultChannelResolver возвращает таблицу каналов для окружения.
func DefaultChannelResolver(env Environment) *alert.DefaultChannelResolver {
	prefix := "#pasarpolis-"
	switch env {
	case EnvStaging, EnvDev, EnvUnittest:
		prefix += string(env) + "-"
	case EnvProduction:
	default:
		return &alert.DefaultChannelResolver{DefaultChannel: "#pasarpolis-general"}
	}
	return alert.NewDefaultChannelResolver(map[alert.Level]string{
		alert.LevelInfo:  prefix + "general",
		alert.LevelWarn:  prefix + "warnings",
		alert.LevelError: prefix + "alerts",
	}, prefix+"general")
}

// Config возвращает копию итоговой конфигурации.
func (c *Client) Config() alert.Config {
	return c.config
}

func (c *Client) sendOrLog(ctx context.Context, level alert.Level, message string, att *alert.Attachment, trace string) error {
	if c.config.Environment != string(EnvUnittest) {
		return c.alerts.Send(ctx, level, message, att, trace)
	}

	args := []any{"level", level.String(), "service", c.config.ServiceName}
	if att != nil {
		args = append(args, "attachment", att.FileName)
	}
	if trace != "" {
		args = append(args, "trace", trace)
	}
	c.local.Info(message, args...)
	return nil
}

// SendInfo пишет информационное сообщение в локальный лог.
func (c *Client) SendInfo(ctx context.Context, message string) error {
	return c.sendOrLog(ctx, alert.LevelInfo, message, nil, "")
}

// SendWarn отправляет предупреждение.
func (c *Client) SendWarn(ctx context.Context, message string) error {
	return c.sendOrLog(ctx, alert.LevelWarn, message, nil, "")
}

// SendWarnWithAttachment отправляет предупреждение с вложением.
func (c *Client) SendWarnWithAttachment(ctx context.Context, message string, att *alert.Attachment) error {
	return c.sendOrLog(ctx, alert.LevelWarn, message, att, "")
}

// SendWarnWithTrace отправляет предупреждение с trace.
func (c *Client) SendWarnWithTrace(ctx context.Context, message, trace string) error {
	return c.sendOrLog(ctx, alert.LevelWarn, message, nil, trace)
}

// SendError отправляет ошибку.
func (c *Client) SendError(ctx context.Context, message string) error {
	return c.sendOrLog(ctx, alert.LevelError, message, nil, "")
}

// SendErrorWithAttachment отправляет ошибку с вложением.
func (c *Client) SendErrorWithAttachment(ctx context.Context, message string, att *alert.Attachment) error {
	return c.sendOrLog(ctx, alert.LevelError, message, att, "")
}

// SendErrorWithTrace отправляет ошибку с trace.
func (c *Client) SendErrorWithTrace(ctx context.Context, message, trace string) error {
	return c.sendOrLog(ctx, alert.LevelError, message, nil, trace)
}

// SendErrorWithAttachmentAndTrace отправляет ошибку с вложением и trace.
func (c *Client) SendErrorWithAttachmentAndTrace(ctx context.Context, message string, att *alert.Attachment, trace string) error {
	return c.sendOrLog(ctx, alert.LevelError, message, att, trace)
}
