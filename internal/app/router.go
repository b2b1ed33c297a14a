package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/app/middleware"
	"github.com/tpaukrt/DRAMConsole/internal/config"
	"github.com/tpaukrt/DRAMConsole/internal/domain/lastlog"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/auth"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/ratelimit"
	"github.com/tpaukrt/DRAMConsole/internal/stream"
	"github.com/tpaukrt/DRAMConsole/pkg/response"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config      *config.Config
	Lastlog     *lastlog.Handler
	Stream      *stream.Hub
	AuthManager *auth.Manager
	Logger      *zap.Logger
	Limiter     ratelimit.Limiter
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.Cors))
	}
	if deps.Config == nil || deps.Config.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.Limiter))
	}
	r.Use(middleware.RequestLogger(deps.Logger))

	api := r.Group("/api/v1")
	deps.Lastlog.RegisterPublic(api)
	if deps.Stream != nil {
		api.GET("/lastlog/stream", deps.Stream.Handler())
	}
	api.POST("/auth/token", tokenExchange(deps.AuthManager))

	protected := r.Group("/api/v1")
	protected.Use(middleware.RequireOperator(deps.AuthManager))
	deps.Lastlog.RegisterProtected(protected)

	if deps.Config == nil || deps.Config.Monitoring.PrometheusEnabled {
		r.GET("/api/v1/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}

func tokenExchange(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Key string `json:"key" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationError(c, err)
			return
		}
		if manager == nil || !manager.Enabled() {
			response.Forbidden(c, "operator access not configured")
			return
		}
		token, err := manager.Exchange(req.Key)
		if err != nil {
			response.Unauthorized(c, "operator key rejected")
			return
		}
		c.JSON(http.StatusOK, token)
	}
}
