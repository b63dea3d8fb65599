package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SylvanToken/AirDropWeb-sub006/pkg/common"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/config"
	"github.com/SylvanToken/AirDropWeb-sub006/pkg/middleware"
)

// Store is the shared counter capability backing the limiter. Keeping it
// behind an interface lets multi-instance deployments swap the store without
// touching callers.
type Store interface {
	// Check returns the current count for a key within its window.
	Check(ctx context.Context, key string) (int64, error)

	// Increment bumps the counter for a key, starting the window on first use.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter is a fixed-window rate limiter backed by a shared Redis store
type Limiter struct {
	client *redis.Client
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// Ensure the limiter satisfies the store capability.
var _ Store = (*Limiter)(nil)

// NewLimiter creates a limiter using the given Redis client
func NewLimiter(client *redis.Client, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithNow overrides the limiter's clock, used by tests
func (l *Limiter) WithNow(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check returns the current count for a key without incrementing it
func (l *Limiter) Check(ctx context.Context, key string) (int64, error) {
	count, err := l.client.Get(ctx, l.redisKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rate limit check: %w", err)
	}
	return count, nil
}

// Increment bumps the counter for a key, setting the window TTL on first use
func (l *Limiter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	redisKey := l.redisKey(key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit increment: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return count, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count, nil
}

// Allow reports whether another request is admitted for the key
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.cfg.Enabled {
		return true, nil
	}
	count, err := l.Increment(ctx, key, l.cfg.Window())
	if err != nil {
		return false, err
	}
	return count <= int64(l.cfg.DefaultLimit), nil
}

func (l *Limiter) redisKey(key string) string {
	window := l.now().Unix() / int64(l.cfg.WindowSeconds)
	return fmt.Sprintf("%s:%s:%d", l.cfg.RedisPrefix, key, window)
}

// Middleware rejects requests exceeding the per-user (or per-IP) budget.
// On store failure the request is admitted; throttling is best-effort.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.cfg.Enabled {
			c.Next()
			return
		}

		key := c.ClientIP()
		if userID, err := middleware.GetUserID(c); err == nil {
			key = userID.String()
		}

		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			common.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}
