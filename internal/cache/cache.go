package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/metrics"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// NewRedisClient returns a configured go-redis client and validates the
// connection with PING.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// ResponseCache is a short-TTL JSON cache for hot dashboard aggregations.
// The front end polls the same windows every minute; serving repeats from
// redis keeps the aggregation queries off the readings table. It fails open:
// a nil client or a redis outage degrades to direct DB reads.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResponseCache returns cache. client may be nil to disable caching.
func NewResponseCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ResponseCache{client: client, ttl: ttl, logger: logger}
}

func (c *ResponseCache) key(parts ...string) string {
	return "monitor:" + strings.Join(parts, ":")
}

// Get unmarshals a cached value into dest, reporting whether it was present.
func (c *ResponseCache) Get(ctx context.Context, dest any, keyParts ...string) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.key(keyParts...)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.Error(err))
		}
		metrics.CacheMissesTotal.WithLabelValues(keyParts[0]).Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn("cache entry corrupt", zap.Error(err))
		metrics.CacheMissesTotal.WithLabelValues(keyParts[0]).Inc()
		return false
	}
	metrics.CacheHitsTotal.WithLabelValues(keyParts[0]).Inc()
	return true
}

// Set stores a value with the cache TTL. Failures are logged, never surfaced.
func (c *ResponseCache) Set(ctx context.Context, value any, keyParts ...string) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(keyParts...), data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
}
