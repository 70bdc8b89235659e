// Package cache keeps grouped search results between identical requests, in process
// and optionally in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/oncodrug-server/internal/domain"
)

const (
	defaultTTL      = 10 * time.Minute
	defaultMaxItems = 1000
)

// SearchCache is a two-tier cache of grouped search results. Redis failures are
// logged and reported as misses; after repeated failures the breaker skips Redis
// entirely until it recovers.
type SearchCache struct {
	local   *expirable.LRU[string, []domain.GroupedMatch]
	remote  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	log     *logrus.Logger
}

// New creates a search cache. An empty RedisURL keeps the cache in process only.
func New(config domain.CacheConfig, logger *logrus.Logger) (*SearchCache, error) {
	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	size := config.MaxItems
	if size <= 0 {
		size = defaultMaxItems
	}

	c := &SearchCache{
		local: expirable.NewLRU[string, []domain.GroupedMatch](size, nil, ttl),
		ttl:   ttl,
		log:   logger,
	}

	if config.RedisURL == "" {
		return c, nil
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries != 0 {
		opts.MaxRetries = config.MaxRetries
	}

	c.remote = redis.NewClient(opts)
	c.breaker = newBreaker(config.BreakerTimeout, logger)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.remote.Ping(pingCtx).Err(); err != nil {
		logger.WithFields(logrus.Fields{
			"redis_addr": opts.Addr,
			"error":      err,
		}).Warn("Redis unreachable, search cache starts degraded")
	}

	return c, nil
}

func newBreaker(timeout time.Duration, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "search-cache-redis",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// Get returns the cached groups for key.
func (c *SearchCache) Get(ctx context.Context, key string) ([]domain.GroupedMatch, bool) {
	if groups, ok := c.local.Get(key); ok {
		return groups, true
	}
	if c.remote == nil {
		return nil, false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.remote.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"cache_key": key,
			"error":     err,
		}).Warn("Search cache read failed")
		return nil, false
	}

	data, _ := result.([]byte)
	if data == nil {
		return nil, false
	}

	var groups []domain.GroupedMatch
	if err := json.Unmarshal(data, &groups); err != nil {
		c.log.WithField("cache_key", key).Warn("Dropping corrupted search cache entry")
		c.remote.Del(ctx, key)
		return nil, false
	}

	c.local.Add(key, groups)
	return groups, true
}

// Set stores groups under key in every tier.
func (c *SearchCache) Set(ctx context.Context, key string, groups []domain.GroupedMatch) {
	c.local.Add(key, groups)
	if c.remote == nil {
		return
	}

	data, err := json.Marshal(groups)
	if err != nil {
		c.log.WithError(err).Warn("Failed to encode search cache entry")
		return
	}

	if _, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.remote.Set(ctx, key, data, c.ttl).Err()
	}); err != nil {
		c.log.WithFields(logrus.Fields{
			"cache_key": key,
			"error":     err,
		}).Warn("Search cache write failed")
	}
}

// Len returns the number of entries held in process.
func (c *SearchCache) Len() int {
	return c.local.Len()
}

// Purge drops every in-process entry.
func (c *SearchCache) Purge() {
	c.local.Purge()
}

// Ping reports whether the Redis tier is reachable; always nil for an in-process cache.
func (c *SearchCache) Ping(ctx context.Context) error {
	if c.remote == nil {
		return nil
	}
	return c.remote.Ping(ctx).Err()
}

// Close releases the Redis client
func (c *SearchCache) Close() error {
	if c.remote == nil {
		return nil
	}
	return c.remote.Close()
}
