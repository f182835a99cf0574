package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/internal/errors"
)

// Limiter records a hit for key and reports whether it is still within limits.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit rejects a client IP with 429 once limiter says so. Limiter failures
// let the request through.
func RateLimit(limiter Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("Rate limiter unavailable", map[string]interface{}{
				"action": action,
				"error":  err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"action":      action,
				"retry_after": seconds,
			})
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       errors.AuthRateLimited,
				"message":     fmt.Sprintf("Too many %s attempts. Try again in %d seconds", action, seconds),
				"retry_after": seconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
