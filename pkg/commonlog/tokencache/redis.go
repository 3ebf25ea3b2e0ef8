package tokencache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig: параметры подключения к Redis.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// RedisStore реализует Store поверх go-redis.
type RedisStore struct {
	client redis.Cmdable
	closer func() error
}

// NewRedisStore открывает клиент Redis по конфигурации.
// Соединение устанавливается лениво, доступность проверяется через Ping.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	client := redis.NewClient(opts)
	return &RedisStore{client: client, closer: client.Close}
}

// NewRedisStoreFromClient использует уже созданный клиент (Client, ClusterClient, Ring).
// Закрытие клиента остаётся на вызывающем коде.
func NewRedisStoreFromClient(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get читает значение. redis.Nil трактуется как промах.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set записывает значение. ttl == 0, без истечения.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close закрывает клиент, если он был создан через NewRedisStore.
func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
