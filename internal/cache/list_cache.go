// Package cache provides the read-path listing cache. The write-path state
// machine never touches it; staleness is bounded by TTL alone.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/repository"
)

// ListCache caches ticket listings keyed by query parameters.
type ListCache interface {
	Get(ctx context.Context, key string) ([]domain.Ticket, bool)
	Set(ctx context.Context, key string, tickets []domain.Ticket)
}

// FilterKey derives a stable cache key from listing parameters.
func FilterKey(filter repository.TicketFilter) string {
	raw, err := json.Marshal(filter)
	if err != nil {
		return "tickets:list:invalid"
	}
	h := fnv.New64a()
	_, _ = h.Write(raw)
	return fmt.Sprintf("tickets:list:%x", h.Sum64())
}

// RedisListCache is the redis-backed ListCache. Cache failures degrade to a
// database read, logged at debug level.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisListCache builds the cache with a bounded TTL.
func NewRedisListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing for key, if present.
func (c *RedisListCache) Get(ctx context.Context, key string) ([]domain.Ticket, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("list cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var tickets []domain.Ticket
	if err := json.Unmarshal(raw, &tickets); err != nil {
		c.logger.Debug("list cache decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return tickets, true
}

// Set stores a listing under key for the configured TTL.
func (c *RedisListCache) Set(ctx context.Context, key string, tickets []domain.Ticket) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(tickets)
	if err != nil {
		c.logger.Debug("list cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("list cache set failed", zap.String("key", key), zap.Error(err))
	}
}
