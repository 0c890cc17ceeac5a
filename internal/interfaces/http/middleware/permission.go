package middleware

import (
	"errors"
	"net/http"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileTypeConfig holds configuration for the profile type guard
type ProfileTypeConfig struct {
	// Users resolves the authenticated user's stored profile
	Users identity.UserRepository
	// Logger for denied requests (optional)
	Logger *zap.Logger
	// Message overrides the detail of the 403 response
	Message string
}

// RequireProfileType creates middleware that only lets users whose stored
// profile has the given type through. It must run after the JWT middleware.
func RequireProfileType(users identity.UserRepository, want identity.ProfileType) gin.HandlerFunc {
	return RequireProfileTypeWithConfig(want, ProfileTypeConfig{Users: users})
}

// RequireProfileTypeWithConfig creates the profile type guard with custom config.
// The profile is read from the database on every request so that a changed
// type takes effect without a new token.
func RequireProfileTypeWithConfig(want identity.ProfileType, cfg ProfileTypeConfig) gin.HandlerFunc {
	message := cfg.Message
	if message == "" {
		message = shared.ErrForbidden.Message
	}

	return func(c *gin.Context) {
		userID := GetJWTUserID(c)
		if userID == 0 {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized,
				"Authentication credentials were not provided.")
			return
		}

		if _, err := identity.RequireProfileType(c.Request.Context(), cfg.Users, userID, want); err != nil {
			if !errors.Is(err, shared.ErrForbidden) {
				if cfg.Logger != nil {
					cfg.Logger.Error("Profile lookup failed", zap.Uint("user_id", userID), zap.Error(err))
				}
				abortWithError(c, http.StatusInternalServerError, dto.ErrCodeInternal, "A server error occurred.")
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn("Profile type denied",
					zap.Uint("user_id", userID),
					zap.String("required_type", string(want)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
			}
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
			return
		}

		c.Next()
	}
}
