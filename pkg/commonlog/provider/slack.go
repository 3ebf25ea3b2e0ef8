package provider

import (
	"context"
	"net/http"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
)

// Slack доставляет сообщения в Slack.
type Slack struct {
	base
}

// slackWebhookPayload: тело запроса на incoming webhook.
// Пустой channel не передаётся: webhook отправит сообщение в свой канал по умолчанию.
type slackWebhookPayload struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// slackHTTPPayload: тело запроса для метода http.
type slackHTTPPayload struct {
	Text string `json:"text"`
}

// slackPostMessagePayload: тело запроса chat.postMessage.
type slackPostMessagePayload struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// NewSlack создаёт провайдера Slack.
func NewSlack(opts ...Option) *Slack {
	return &Slack{base: newBase(alert.ProviderSlack, opts)}
}

// Send форматирует сообщение и отправляет его методом cfg.SendMethod.
// Поле ok в ответе chat.postMessage не проверяется: успех определяется статусом HTTP 200.
func (s *Slack) Send(ctx context.Context, level alert.Level, message string, att *alert.Attachment, cfg alert.Config) (err error) {
	ctx, span := s.startSpan(ctx, level, cfg)
	defer func() { endSpan(span, err) }()

	text := Format(message, att, cfg.ServiceName, cfg.Environment, SlackStyle)

	c := call{
		provider: alert.ProviderSlack,
		method:   cfg.SendMethod,
		verb:     http.MethodPost,
		debug:    cfg.Debug,
	}

	switch cfg.SendMethod {
	case alert.MethodWebhook:
		c.url = cfg.WebhookURL
		c.payload = slackWebhookPayload{Text: text, Channel: cfg.Channel}
	case alert.MethodHTTP:
		c.url = cfg.HTTPURL
		c.payload = slackHTTPPayload{Text: text}
	case alert.MethodWebClient:
		c.url = s.endpoints.SlackPostMessage
		c.bearer = slackToken(cfg)
		c.payload = slackPostMessagePayload{Channel: cfg.Channel, Text: text}
	default:
		return &alert.UnsupportedMethodError{Provider: alert.ProviderSlack, Method: cfg.SendMethod}
	}

	if _, err := s.transport.do(ctx, c); err != nil {
		return err
	}

	if cfg.Debug {
		s.logger.Debug("сообщение доставлено в Slack", "channel", cfg.Channel, "method", cfg.SendMethod)
	}
	return nil
}

// slackToken выбирает токен: SlackToken, иначе общий Token.
func slackToken(cfg alert.Config) string {
	if cfg.SlackToken != "" {
		return cfg.SlackToken
	}
	return cfg.Token
}
