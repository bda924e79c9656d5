package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"spimex-data/internal/config"
)

// NewClient creates a Redis client for the response cache.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username: cfg.User,
		Password: cfg.Password,
		DB:       cfg.CacheDB,
	})
}

// Cache is a JSON read-through cache for API query results. Entries expire
// after the configured TTL and the whole cache is flushed daily (ResetJob),
// so a scrape run's new rows become visible within a day at worst.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a Cache.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get loads a cached value into dest. The second return is false on a miss.
// Cache errors are reported but callers treat them as misses; the cache is
// an optimization, never a source of truth.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	c.logger.Debug("cache hit", "key", key)
	return true, nil
}

// Set stores a value under key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	c.logger.Debug("cache set", "key", key, "ttl", c.ttl)
	return nil
}

// Flush clears the whole cache database.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	c.logger.Info("cache flushed")
	return nil
}
