package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/denisok-ai/LytSlot/pkg/jwtutil"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitWindow = 60 * time.Second

// Counter is the counting store behind the rate limiter. RedisCounter is
// the production implementation.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// RedisCounter counts on a Redis client created once at startup.
type RedisCounter struct {
	rdb *redis.Client
}

// NewRedisCounter wraps the process-scoped Redis client.
func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (rc *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return rc.rdb.Incr(ctx, key).Result()
}

func (rc *RedisCounter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return rc.rdb.Expire(ctx, key, ttl).Err()
}

// RateLimit limits requests per minute by JWT subject when a valid bearer
// token is present, else by client IP. Token validation failures are
// treated as anonymous, never rejected here. Any counting store failure
// allows the request (fail-open).
func RateLimit(counter Counter, limit int, jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "rate:ip:" + c.RealIP()
			if token := BearerToken(c.Request()); token != "" {
				if sub := jwt.SubjectOrEmpty(token); sub != "" {
					key = "rate:user:" + sub
				}
			}

			ctx := c.Request().Context()
			n, err := counter.Incr(ctx, key)
			if err != nil {
				logger.FromEcho(c).Warn("Rate limit store unreachable, allowing request",
					zap.Error(err))
				return next(c)
			}
			if n == 1 {
				// First hit opens the window; expiry failures fail open too.
				if err := counter.Expire(ctx, key, rateLimitWindow); err != nil {
					logger.FromEcho(c).Warn("Failed to set rate limit window", zap.Error(err))
				}
			}
			if n > int64(limit) {
				prometheus.RecordRateLimited()
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many requests"})
			}

			return next(c)
		}
	}
}
