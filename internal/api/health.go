package api

import (
	"net/http"
	"time"

	"code-review-assistant/backend/pkg/health"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest component health
type HealthHandler struct {
	checker *health.Checker
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker *health.Checker, version string) *HealthHandler {
	return &HealthHandler{checker: checker, version: version}
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string                      `json:"status"`
	Timestamp  time.Time                   `json:"timestamp"`
	Version    string                      `json:"version"`
	Components map[string]health.Component `json:"components"`
}

// Health answers 200 while every critical component is up and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		Components: h.checker.GetStatus(),
	}

	code := http.StatusOK
	if !h.checker.IsSystemHealthy() {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
