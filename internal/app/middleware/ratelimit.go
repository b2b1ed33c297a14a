package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/ratelimit"
	"github.com/tpaukrt/DRAMConsole/pkg/response"
)

// RateLimit enforces a per-IP throttle on every route. A limiter error
// (e.g. redis unavailable) fails open: throttling is protection, not a
// correctness requirement.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		decision, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			response.TooManyRequests(c, decision.Reset)
			c.Abort()
			return
		}
		c.Next()
	}
}
