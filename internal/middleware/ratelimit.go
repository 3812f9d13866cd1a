package middleware

import (
	"net/http"
	"strconv"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit gates a route on limiter. The identifier is "<route>:<principal>", where the
// principal is the authenticated user or, for anonymous calls, the client IP.
func RateLimit(limiter ratelimit.Limiter, route string, policy ratelimit.Policy, logger *zap.Logger) gin.HandlerFunc {
	limit := strconv.Itoa(policy.MaxRequests)

	return func(c *gin.Context) {
		principal := c.ClientIP()
		if p, ok := PrincipalFrom(c); ok {
			principal = p.UserID
		}
		key := route + ":" + principal

		result, err := limiter.Check(c.Request.Context(), key, policy)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Rate limit check failed",
			})
			return
		}

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(result.ResetIn))

		if !result.Allowed {
			logger.Info("rate limit exceeded",
				zap.String("key", key),
				zap.Int("retry_after", result.ResetIn),
			)

			c.Header("Retry-After", strconv.Itoa(result.ResetIn))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": result.ResetIn,
			})
			return
		}

		c.Next()
	}
}
