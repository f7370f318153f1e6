package middleware

import (
	"context"
	"net/http"

	"careconnect-backend/internal/observability"

	"github.com/gin-gonic/gin"
)

// Limiter caps attempts per key; ratelimit.Limiter satisfies it
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects callers that exceed limiter, keyed by client IP.
// A failing limiter lets the request through.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			observability.LoggerFromContext(c.Request.Context()).Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many attempts. Please wait a minute and try again.",
			})
			return
		}
		c.Next()
	}
}
