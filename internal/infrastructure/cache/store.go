package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/metrics"
	"github.com/daybook/core/internal/ports"
)

// Store implements ports.CacheRepository in process memory. Values are kept
// JSON-encoded so a reader always gets its own copy.
type Store struct {
	entries *TTL[[]byte]
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewStore creates an in-memory cache repository. now may be nil.
func NewStore(now func() time.Time, log *logger.Logger, m *metrics.Metrics) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		entries: NewTTL[[]byte](now),
		logger:  log.WithComponent("cache"),
		metrics: m,
	}
}

var _ ports.CacheRepository = (*Store)(nil)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	s.entries.Set(key, data, expiration)
	return nil
}

func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := s.entries.Get(key)
	if !ok {
		s.metrics.CacheResult("miss")
		return entities.ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entry: drop it and behave as a miss.
		s.entries.Delete(key)
		s.metrics.CacheResult("corrupt")
		s.logger.Warnw("Dropped undecodable cache entry", "key", key, "error", err)
		return entities.ErrCacheMiss
	}

	s.metrics.CacheResult("hit")
	return nil
}

// SetRaw stores already-encoded bytes without validation.
func (s *Store) SetRaw(key string, data []byte, expiration time.Duration) {
	s.entries.Set(key, data, expiration)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *Store) DeletePattern(ctx context.Context, pattern string) error {
	removed := s.entries.Invalidate(pattern)
	s.logger.Debugw("Invalidated cache entries", "pattern", pattern, "removed", removed)
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	return s.entries.Has(key), nil
}
