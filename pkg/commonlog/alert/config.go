package alert

import (
	"fmt"
	"net/url"
)

// LarkCredentials: учётные данные приложения Lark для получения tenant access token.
type LarkCredentials struct {
	AppID     string
	AppSecret string
}

// IsSet возвращает true, если заданы и AppID, и AppSecret.
func (c LarkCredentials) IsSet() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// Config описывает куда и как отправлять алерты.
// Config передаётся по значению: фасад хранит свою копию, а для каждого вызова
// строит снимок с нужным каналом через WithChannel.
type Config struct {
	// Provider: чат-провайдер по умолчанию.
	Provider ProviderID
	// SendMethod: транспорт доставки.
	SendMethod SendMethod

	// Token: общий Bearer токен для webclient.
	Token string
	// SlackToken: токен Slack, имеет приоритет над Token.
	SlackToken string
	// LarkToken: учётные данные приложения Lark; при наличии токен берётся из кэша.
	LarkToken LarkCredentials

	// WebhookURL: адрес для метода webhook.
	WebhookURL string
	// HTTPURL: адрес для метода http.
	HTTPURL string

	// Channel: канал по умолчанию, используется без резолвера.
	Channel string
	// ChannelResolver выбирает канал по уровню. Может быть nil.
	ChannelResolver ChannelResolver

	// ServiceName и Environment попадают в заголовок сообщения.
	ServiceName string
	Environment string

	// ResolveLarkChatID включает поиск chat_id по имени канала для Lark webclient.
	// Без него Channel передаётся в receive_id как есть.
	ResolveLarkChatID bool

	// Debug включает подробное логирование шагов доставки (без токенов).
	Debug bool
}

// WithChannel возвращает копию конфигурации с заменённым каналом.
// Исходная конфигурация не изменяется.
func (c Config) WithChannel(channel string) Config {
	c.Channel = channel
	return c
}

// Validate проверяет, что для выбранного провайдера и метода заданы нужные параметры.
// Ошибки оборачивают ErrConfiguration, ErrUnsupportedProvider или ErrUnsupportedMethod.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderSlack, ProviderLark:
	default:
		return &UnsupportedProviderError{Provider: c.Provider}
	}

	switch c.SendMethod {
	case MethodWebhook:
		return validateURL("webhook url", c.WebhookURL)
	case MethodHTTP:
		return validateURL("http url", c.HTTPURL)
	case MethodWebClient:
		return c.validateWebClient()
	default:
		return &UnsupportedMethodError{Provider: c.Provider, Method: c.SendMethod}
	}
}

func (c Config) validateWebClient() error {
	if c.Provider == ProviderSlack {
		if c.SlackToken == "" && c.Token == "" {
			return fmt.Errorf("%w: slack webclient requires slack token or token", ErrConfiguration)
		}
		return nil
	}

	if (c.LarkToken.AppID == "") != (c.LarkToken.AppSecret == "") {
		return fmt.Errorf("%w: lark app id and app secret must be set together", ErrConfiguration)
	}
	if !c.LarkToken.IsSet() && c.Token == "" {
		return fmt.Errorf("%w: lark webclient requires app credentials or token", ErrConfiguration)
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is required", ErrConfiguration, name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s has invalid format (must have scheme and host)", ErrConfiguration, name)
	}
	return nil
}
