package middleware

import (
	"strings"

	"code-review-assistant/backend/pkg/errors"
	"code-review-assistant/backend/pkg/jwt"
	"code-review-assistant/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	ClaimsKey   = "claims"
	UserIDKey   = "userId"
	UserRoleKey = "userRole"
)

// OptionalAuth attaches the caller's identity when a bearer token is sent.
// Requests without an Authorization header pass through anonymously; a
// header carrying a bad token is still rejected.
func OptionalAuth(tokens *jwt.Service) gin.HandlerFunc {
	return authenticate(tokens, false)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens *jwt.Service) gin.HandlerFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens *jwt.Service, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.Error(errors.NewUnauthorizedError(errors.CodeAuthRequired, "Authorization header is required"))
				c.Abort()
				return
			}
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			logger.FromContext(c).Warn("Invalid JWT token", "error", err.Error())
			c.Error(errors.NewUnauthorizedError(errors.CodeInvalidToken, "Invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole returns a middleware that requires the user to have a specific role.
// It must run after RequireAuth.
func RequireRole(role jwt.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.Error(errors.NewUnauthorizedError(errors.CodeAuthRequired, "Authentication required"))
			c.Abort()
			return
		}

		if !claims.HasRole(role) {
			c.Error(errors.NewForbiddenError(errors.CodeForbidden, "Your role does not allow this operation"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// Claims returns the verified token claims of the request, if any
func Claims(c *gin.Context) (*jwt.JWTClaims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.JWTClaims)
	return claims, ok
}

// UserID returns the authenticated user id, or nil for anonymous requests
func UserID(c *gin.Context) *uint {
	claims, ok := Claims(c)
	if !ok {
		return nil
	}
	id := claims.UserID
	return &id
}
