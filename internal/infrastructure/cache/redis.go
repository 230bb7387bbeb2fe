package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/ports"
)

const scanBatch = 100

// RedisStore implements ports.CacheRepository on Redis, sharing cached
// snapshots between server instances. Expiry is delegated to Redis.
type RedisStore struct {
	client  *redis.Client
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewRedisClient opens a client and pings it once.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 3,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.GetAddr(), err)
	}
	return client, nil
}

// NewRedisStore creates a cache repository on an existing client.
func NewRedisStore(client *redis.Client, log *logger.Logger, m *metrics.Metrics) *RedisStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisStore{
		client:  client,
		logger:  log.WithComponent("redis_cache"),
		metrics: m,
	}
}

var _ ports.CacheRepository = (*RedisStore)(nil)

func (r *RedisStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = DefaultTTL
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.metrics.CacheResult("miss")
			return entities.ErrCacheMiss
		}
		return fmt.Errorf("get cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.metrics.CacheResult("corrupt")
		r.logger.Warnw("Dropped undecodable cache entry", "key", key, "error", err)
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.Warnw("Failed to delete corrupt cache entry", "key", key, "error", delErr)
		}
		return entities.ErrCacheMiss
	}

	r.metrics.CacheResult("hit")
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete cache: %w", err)
	}
	return nil
}

// DeletePattern removes every key containing pattern; an empty pattern
// removes every key in the selected database.
func (r *RedisStore) DeletePattern(ctx context.Context, pattern string) error {
	match := "*" + escapeGlob(pattern) + "*"

	var keys []string
	iter := r.client.Scan(ctx, 0, match, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
	}
	return nil
}

func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	return count > 0, nil
}

// Ping is used by readiness checks.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// escapeGlob quotes the characters Redis MATCH treats as wildcards.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
