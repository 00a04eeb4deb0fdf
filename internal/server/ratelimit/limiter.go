// Package ratelimit implements a fixed-window request limiter keyed by
// route path and client identity, backed by a shared counter store with
// expiry (Redis in production).
//
// Window boundaries do not slide: a client can burst up to twice the limit
// across a window seam. That approximation is accepted.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/authgate/internal/logging"
)

// CounterStore is the slice of the counter backend the limiter needs:
// an atomic increment and a TTL on first touch.
type CounterStore interface {
	// Incr atomically increments the counter for key and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the key's time-to-live. Called only for the first
	// increment in a window.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// RedisCounterStore implements CounterStore on a shared Redis client.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.rdb.Incr(ctx, key).Result()
}

func (s *RedisCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}

// Limiter gates requests to at most limit per window per client identity.
type Limiter struct {
	store  CounterStore
	logger logging.Logger
	limit  int
	window time.Duration
}

func NewLimiter(store CounterStore, logger logging.Logger, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		logger: logger.With("module", "ratelimit"),
		limit:  limit,
		window: window,
	}
}

// Middleware returns the gin handler enforcing the limit.
//
// If the counter store is unreachable the request is allowed through and the
// failure is logged: availability wins over strict enforcement during a
// cache outage.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate-limit:%s:%s", c.Request.URL.Path, clientIdentity(c))

		current, err := l.store.Incr(ctx, key)
		if err != nil {
			l.logger.Warn(ctx, "counter store unavailable, failing open", "error", err)
			c.Next()
			return
		}

		if current == 1 {
			if err := l.store.Expire(ctx, key, l.window); err != nil {
				l.logger.Warn(ctx, "counter expiry set failed, failing open", "error", err)
				c.Next()
				return
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		remaining := int64(l.limit) - current
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if current > int64(l.limit) {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}

// clientIdentity derives the caller's identity from the first forwarded-for
// hop, falling back to CF-Connecting-IP and then "unknown".
func clientIdentity(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return "unknown"
}
