package api

import (
	"errors"

	"code-review-assistant/backend/internal/ai"
	"code-review-assistant/backend/internal/review"
	"code-review-assistant/backend/internal/service"
	apperrors "code-review-assistant/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// toAppError maps domain errors onto the HTTP error taxonomy
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, review.ErrValidation):
		return apperrors.NewBadRequestError(apperrors.CodeValidation, err.Error())
	case errors.Is(err, review.ErrNotFound):
		return apperrors.NewNotFoundError(apperrors.CodeNotFound, err.Error())
	case errors.Is(err, ai.ErrServiceUnavailable):
		return apperrors.NewServiceUnavailableError(apperrors.CodeAIUnavailable, "The AI service is unavailable, please retry later").WithCause(err)
	case errors.Is(err, review.ErrStorage):
		return apperrors.NewInternalServerError(apperrors.CodeStorage, "Failed to store review data").WithCause(err)
	case errors.Is(err, service.ErrUserAlreadyExists):
		return apperrors.NewConflictError(apperrors.CodeConflict, "A user with this username already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid username or password")
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewNotFoundError(apperrors.CodeNotFound, "User not found")
	}
	return apperrors.FromError(err)
}

// abort pushes err to the error middleware and stops the chain
func abort(c *gin.Context, err error) {
	c.Error(toAppError(err))
	c.Abort()
}

// bindError reports a malformed request body
func bindError(c *gin.Context, err error) {
	c.Error(apperrors.BadRequestWithDetails(apperrors.CodeInvalidBody, "Invalid request format", err.Error()))
	c.Abort()
}
