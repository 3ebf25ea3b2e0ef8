package config

import (
	"errors"
	"time"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/commonlog/tokencache"
)

// AlertConfig содержит настройки доставки алертов.
type AlertConfig struct {
	// Provider: slack или lark.
	Provider string `yaml:"provider" env:"CL_ALERT_PROVIDER" env-default:"slack" env-description:"chat provider: slack or lark"`

	// SendMethod: webhook, http или webclient.
	SendMethod string `yaml:"sendMethod" env:"CL_ALERT_SEND_METHOD" env-default:"webhook" env-description:"send method: webhook, http or webclient"`

	// Token: общий Bearer токен для webclient.
	Token string `yaml:"token" env:"CL_ALERT_TOKEN"`

	// SlackToken: токен бота Slack.
	SlackToken string `yaml:"slackToken" env:"CL_ALERT_SLACK_TOKEN"`

	// LarkAppID и LarkAppSecret: учётные данные приложения Lark.
	LarkAppID     string `yaml:"larkAppId" env:"CL_ALERT_LARK_APP_ID"`
	LarkAppSecret string `yaml:"larkAppSecret" env:"CL_ALERT_LARK_APP_SECRET"`

	// WebhookURL: адрес входящего webhook.
	WebhookURL string `yaml:"webhookUrl" env:"CL_ALERT_WEBHOOK_URL"`

	// HTTPURL: адрес для метода http.
	HTTPURL string `yaml:"httpUrl" env:"CL_ALERT_HTTP_URL"`

	// Channel: канал по умолчанию.
	Channel string `yaml:"channel" env:"CL_ALERT_CHANNEL"`

	// ChannelMap задаёт каналы по уровню, например warn:#warnings,error:#alerts.
	ChannelMap map[string]string `yaml:"channelMap" env:"CL_ALERT_CHANNEL_MAP" env-description:"level to channel map, e.g. warn:#warnings,error:#alerts"`

	// ServiceName и Environment попадают в заголовок сообщения.
	ServiceName string `yaml:"serviceName" env:"CL_ALERT_SERVICE_NAME"`
	Environment string `yaml:"environment" env:"CL_ALERT_ENVIRONMENT"`

	// ResolveLarkChatID включает поиск chat_id по имени канала.
	ResolveLarkChatID bool `yaml:"resolveLarkChatId" env:"CL_ALERT_RESOLVE_LARK_CHAT_ID"`

	// Debug включает подробное логирование доставки.
	Debug bool `yaml:"debug" env:"CL_ALERT_DEBUG"`
}

// HTTPConfig содержит настройки HTTP клиента провайдеров.
type HTTPConfig struct {
	// Timeout: таймаут одного запроса.
	Timeout time.Duration `yaml:"timeout" env:"CL_HTTP_TIMEOUT" env-default:"30s"`

	// ProxyURL: HTTP прокси.
	ProxyURL string `yaml:"proxyUrl" env:"CL_HTTP_PROXY_URL"`

	// RatePerSec: ограничение запросов в секунду (0, без ограничения).
	RatePerSec float64 `yaml:"ratePerSec" env:"CL_HTTP_RATE_PER_SEC"`

	// RateBurst: размер пачки для ограничителя.
	RateBurst int `yaml:"rateBurst" env:"CL_HTTP_RATE_BURST" env-default:"1"`
}

// RedisConfig содержит настройки хранилища токенов.
type RedisConfig struct {
	// Addr: host:port. Пустое значение включает кэш в памяти процесса.
	Addr string `yaml:"addr" env:"CL_REDIS_ADDR"`

	Password string `yaml:"password" env:"CL_REDIS_PASSWORD"`

	DB int `yaml:"db" env:"CL_REDIS_DB"`

	DialTimeout time.Duration `yaml:"dialTimeout" env:"CL_REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

// AlertConfig собирает alert.Config из секции alert.
// Ключи ChannelMap разбираются через alert.ParseLevel; при наличии таблицы
// создаётся DefaultChannelResolver с Channel в качестве канала по умолчанию.
func (c *Config) AlertConfig() (alert.Config, error) {
	a := c.Alert
	cfg := alert.Config{
		Provider:          alert.ProviderID(a.Provider),
		SendMethod:        alert.SendMethod(a.SendMethod),
		Token:             a.Token,
		SlackToken:        a.SlackToken,
		LarkToken:         alert.LarkCredentials{AppID: a.LarkAppID, AppSecret: a.LarkAppSecret},
		WebhookURL:        a.WebhookURL,
		HTTPURL:           a.HTTPURL,
		Channel:           a.Channel,
		ServiceName:       a.ServiceName,
		Environment:       a.Environment,
		ResolveLarkChatID: a.ResolveLarkChatID,
		Debug:             a.Debug,
	}

	if len(a.ChannelMap) > 0 {
		channels := make(map[alert.Level]string, len(a.ChannelMap))
		for name, ch := range a.ChannelMap {
			level, err := alert.ParseLevel(name)
			if err != nil {
				return cfg, err
			}
			channels[level] = ch
		}
		cfg.ChannelResolver = alert.NewDefaultChannelResolver(channels, a.Channel)
	}
	return cfg, nil
}

// UsesRedis возвращает true, если кэш токенов должен храниться в Redis.
func (c RedisConfig) UsesRedis() bool {
	return c.Addr != ""
}

// ToRedis преобразует секцию в tokencache.RedisConfig.
func (c RedisConfig) ToRedis() tokencache.RedisConfig {
	return tokencache.RedisConfig{
		Addr:        c.Addr,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.DialTimeout,
	}
}

func (c HTTPConfig) validate() error {
	if c.Timeout <= 0 {
		return errors.New("timeout должен быть положительным")
	}
	if c.RatePerSec < 0 {
		return errors.New("ratePerSec не может быть отрицательным")
	}
	return nil
}
