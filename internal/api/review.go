package api

import (
	"net/http"

	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/review"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// SuggestionResponse is one suggestion as the editor client consumes it.
// ModifiedText, RejectReason and Status are client-side fields returned
// empty.
type SuggestionResponse struct {
	ID           int             `json:"id"`
	Text         string          `json:"text"`
	Severity     models.Severity `json:"severity"`
	ModifiedText string          `json:"modifiedText"`
	RejectReason string          `json:"rejectReason"`
	Status       *string         `json:"status"`
	FilePath     *string         `json:"file_path"`
}

func toSuggestionResponses(suggestions []models.Suggestion) []SuggestionResponse {
	out := make([]SuggestionResponse, len(suggestions))
	for i, s := range suggestions {
		out[i] = SuggestionResponse{
			ID:       s.SuggestionID,
			Text:     s.Text,
			Severity: s.Severity,
			FilePath: s.FilePath,
		}
	}
	return out
}

// ReviewHandler serves the review and feedback endpoints
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, logger *logger.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, logger: logger}
}

// Review runs the review pipeline on the submitted code
func (h *ReviewHandler) Review(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	suggestions, err := h.service.Review(c.Request.Context(), review.ReviewInput{
		Code:      req.Code,
		Language:  req.Language,
		SessionID: req.SessionID,
		FilePath:  req.FilePath,
		UserID:    middleware.UserID(c),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": toSuggestionResponses(suggestions)})
}

// GetSession returns the stored code and suggestions of a session
func (h *ReviewHandler) GetSession(c *gin.Context) {
	session, suggestions, err := h.service.GetSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":     session,
		"suggestions": toSuggestionResponses(suggestions),
	})
}

// PurgeSession removes a session and all of its feedback history
func (h *ReviewHandler) PurgeSession(c *gin.Context) {
	if err := h.service.PurgeSession(c.Request.Context(), c.Param("sessionId")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Accept records an accepted suggestion and returns the patched code
func (h *ReviewHandler) Accept(c *gin.Context) {
	var req models.AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	modified, err := h.service.Accept(c.Request.Context(), review.AcceptInput{
		SessionID:      req.SessionID,
		SuggestionID:   req.SuggestionID,
		SuggestionText: req.SuggestionText,
		ModifiedText:   req.ModifiedText,
		OriginalCode:   req.OriginalCode,
		Language:       req.Language,
		FilePath:       req.FilePath,
		UserID:         middleware.UserID(c),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Suggestion accepted and stored",
		"modified_code": modified,
	})
}

// Reject records a rejected suggestion so it is never offered again
func (h *ReviewHandler) Reject(c *gin.Context) {
	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	err := h.service.Reject(c.Request.Context(), review.RejectInput{
		SessionID:      req.SessionID,
		SuggestionID:   req.SuggestionID,
		SuggestionText: req.SuggestionText,
		RejectReason:   req.RejectReason,
		Language:       req.Language,
		FilePath:       req.FilePath,
		UserID:         middleware.UserID(c),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion rejected and stored"})
}

// Modify records a developer's rewrite of a suggestion
func (h *ReviewHandler) Modify(c *gin.Context) {
	var req models.ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	restated, err := h.service.Modify(c.Request.Context(), review.ModifyInput{
		SessionID:    req.SessionID,
		SuggestionID: req.SuggestionID,
		OriginalText: req.OriginalText,
		ModifiedText: req.ModifiedText,
		Language:     req.Language,
		FilePath:     req.FilePath,
		UserID:       middleware.UserID(c),
	})
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Suggestion modified and stored",
		"modified_suggestion": restated,
	})
}
