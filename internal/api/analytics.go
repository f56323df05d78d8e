package api

import (
	"errors"
	"io"
	"net/http"

	"code-review-assistant/backend/internal/analytics"
	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the admin dashboard figures
type AnalyticsHandler struct {
	service *analytics.Service
	logger  *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *analytics.Service, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// bindFilter accepts an empty body as "no filter"
func bindFilter(c *gin.Context) (models.AnalyticsFilter, bool) {
	var f models.AnalyticsFilter
	if err := c.ShouldBindJSON(&f); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return f, false
	}
	return f, true
}

// Summary returns feedback counts, percentages and detection accuracy
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Latency returns the mean gateway latency per day
func (h *AnalyticsHandler) Latency(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	days, err := h.service.LatencyByDay(c.Request.Context(), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// Trends returns per-day feedback counts by type
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}

	trends, err := h.service.Trends(c.Request.Context(), f)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}
