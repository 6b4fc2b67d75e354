package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"www.github.com/Wanderer0074348/Yahmi/src/auth"
	"www.github.com/Wanderer0074348/Yahmi/src/metrics"
)

// RateLimiter is a fixed window request limiter shared across instances through redis.
// Callers are identified by user id when authenticated, otherwise by client IP.
type RateLimiter struct {
	client  *redis.Client
	name    string
	limit   int
	window  time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration, m *metrics.Metrics, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client:  client,
		name:    name,
		limit:   limit,
		window:  window,
		metrics: m,
		logger:  logger,
	}
}

func (r *RateLimiter) identifier(c *gin.Context) string {
	if user, ok := auth.CurrentUser(c); ok {
		return "user:" + user.ID
	}
	return "ip:" + c.ClientIP()
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%s", r.name, r.identifier(c))

		var incr *redis.IntCmd
		var pttl *redis.DurationCmd
		_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pttl = pipe.PTTL(ctx, key)
			return nil
		})
		if err != nil {
			// Redis trouble should not take the API down with it.
			r.logger.Warn("rate limiter unavailable", zap.String("limiter", r.name), zap.Error(err))
			c.Next()
			return
		}

		count := incr.Val()
		ttl := pttl.Val()
		if ttl < 0 {
			// A key without expiry would block the caller forever, so any hit
			// that finds one sets the window again.
			if err := r.client.Expire(context.WithoutCancel(ctx), key, r.window).Err(); err != nil {
				r.logger.Warn("rate limiter could not set window",
					zap.String("limiter", r.name),
					zap.String("key", key),
					zap.Error(err),
				)
			}
			ttl = r.window
		}

		if count > int64(r.limit) {
			retryAfter := int(math.Ceil(ttl.Seconds()))

			r.metrics.RecordRequestRateLimited(r.name)
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Too many requests. Please try again later.",
				"retryAfter": retryAfter,
			})
			return
		}

		c.Next()
	}
}
