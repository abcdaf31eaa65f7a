// Package server builds the HTTP surface of the API binary.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillgap-backend/internal/analysis"
	"skillgap-backend/internal/services/health"
	"skillgap-backend/internal/shared/config"
	"skillgap-backend/internal/shared/metrics"
	"skillgap-backend/internal/shared/server/middleware"
	"skillgap-backend/internal/shared/server/respond"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	Health          *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/healthz", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	r.GET("/readyz", func(c *gin.Context) {
		payload := deps.Health.Ready(c.Request.Context())
		status := http.StatusOK
		if ok, _ := payload["ok"].(bool); !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	deps.AnalysisHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
