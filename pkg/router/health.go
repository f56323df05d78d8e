package router

import (
	"code-review-assistant/backend/internal/api"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check and metrics endpoints
func (r *Router) setupHealthRoutes() {
	h := api.NewHealthHandler(r.Container.Health, r.Container.Config.Server.Version)

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", h.Health)
	r.Engine.GET("/api/v1/health", h.Health)

	if handler := r.Container.Telemetry.Handler; handler != nil {
		r.Engine.GET("/metrics", gin.WrapH(handler))
	}
}
