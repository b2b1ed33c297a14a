package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/auth"
	"github.com/tpaukrt/DRAMConsole/pkg/response"
)

// RequireOperator validates operator bearer tokens. When no operator
// key is configured the protected routes are simply unavailable.
func RequireOperator(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || !manager.Enabled() {
			response.Forbidden(c, "operator access not configured")
			c.Abort()
			return
		}
		token := extractBearer(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := manager.Parse(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set("operator_token_id", claims.ID)
		c.Next()
	}
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
