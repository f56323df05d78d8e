package api

import (
	"net/http"

	"code-review-assistant/backend/internal/models"
	"code-review-assistant/backend/internal/service"
	apperrors "code-review-assistant/backend/pkg/errors"
	"code-review-assistant/backend/pkg/logger"
	"code-review-assistant/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	service *service.UserService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *service.UserService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Signup handles user registration
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, token, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		abort(c, err)
		return
	}

	h.logger.Info("User signed up", "userID", user.ID, "role", user.Role)

	c.JSON(http.StatusCreated, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		abort(c, err)
		return
	}

	h.logger.Info("User logged in successfully",
		"userID", user.ID,
		"role", user.Role,
	)

	c.JSON(http.StatusOK, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		abort(c, apperrors.NewUnauthorizedError(apperrors.CodeAuthRequired, "Authentication required"))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), *userID)
	if err != nil {
		abort(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}
