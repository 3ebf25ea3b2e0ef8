// Package tokencache хранит tenant access token Lark и найденные chat_id
// во внешнем хранилище (Redis) или в памяти процесса.
//
// Формат ключей совместим с другими клиентами commonlog:
//
//	commonlog_lark_token:<app_id>:<app_secret>
//	commonlog_lark_chat_id:<environment>:<channel>
package tokencache

import (
	"context"
	"fmt"
	"time"

	"github.com/Kargones/commonlog/pkg/commonlog/alert"
	"github.com/Kargones/commonlog/pkg/logging"
)

const (
	tokenKeyPrefix  = "commonlog_lark_token:"
	chatIDKeyPrefix = "commonlog_lark_chat_id:"

	// tokenSafetyMargin: на сколько раньше срока истечения токен удаляется из кэша.
	tokenSafetyMargin = 600 * time.Second
	// minTokenTTL: минимальный TTL, если expire от API меньше запаса.
	minTokenTTL = 60 * time.Second
)

// Store: key-value хранилище с TTL.
// ttl == 0 означает запись без срока истечения.
// Отсутствие ключа или истёкший ключ возвращают ok=false без ошибки.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cache: кэш токенов и chat_id поверх Store.
// Ошибки хранилища не скрываются: они оборачиваются в alert.ErrCacheUnavailable.
type Cache struct {
	store  Store
	logger logging.Logger
}

// New создаёт Cache. При nil logger используется NopLogger.
func New(store Store, logger logging.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Cache{store: store, logger: logger}
}

// TokenKey возвращает ключ токена для пары (appID, appSecret).
func TokenKey(appID, appSecret string) string {
	return tokenKeyPrefix + appID + ":" + appSecret
}

// ChatIDKey возвращает ключ chat_id для канала в окружении.
func ChatIDKey(environment, channel string) string {
	return chatIDKeyPrefix + environment + ":" + channel
}

// TTLFromExpire вычисляет TTL записи по сроку жизни токена в секундах:
// expire-600 секунд, но не меньше 60 секунд.
func TTLFromExpire(expireSeconds int) time.Duration {
	ttl := time.Duration(expireSeconds)*time.Second - tokenSafetyMargin
	if ttl <= 0 {
		return minTokenTTL
	}
	return ttl
}

// GetToken возвращает кэшированный токен. ok=false при промахе или истечении.
func (c *Cache) GetToken(ctx context.Context, appID, appSecret string) (string, bool, error) {
	token, ok, err := c.store.Get(ctx, TokenKey(appID, appSecret))
	if err != nil {
		return "", false, fmt.Errorf("%w: чтение токена: %w", alert.ErrCacheUnavailable, err)
	}
	c.logger.Debug("lark token cache lookup", "app_id", appID, "hit", ok)
	return token, ok, nil
}

// PutToken сохраняет токен с TTL, вычисленным через TTLFromExpire.
func (c *Cache) PutToken(ctx context.Context, appID, appSecret, token string, expireSeconds int) error {
	ttl := TTLFromExpire(expireSeconds)
	if err := c.store.Set(ctx, TokenKey(appID, appSecret), token, ttl); err != nil {
		return fmt.Errorf("%w: запись токена: %w", alert.ErrCacheUnavailable, err)
	}
	c.logger.Debug("lark token cached", "app_id", appID, "ttl_s", int(ttl.Seconds()))
	return nil
}

// GetChatID возвращает кэшированный chat_id канала.
func (c *Cache) GetChatID(ctx context.Context, environment, channel string) (string, bool, error) {
	chatID, ok, err := c.store.Get(ctx, ChatIDKey(environment, channel))
	if err != nil {
		return "", false, fmt.Errorf("%w: чтение chat_id: %w", alert.ErrCacheUnavailable, err)
	}
	return chatID, ok, nil
}

// PutChatID сохраняет chat_id без срока истечения.
func (c *Cache) PutChatID(ctx context.Context, environment, channel, chatID string) error {
	if err := c.store.Set(ctx, ChatIDKey(environment, channel), chatID, 0); err != nil {
		return fmt.Errorf("%w: запись chat_id: %w", alert.ErrCacheUnavailable, err)
	}
	return nil
}
