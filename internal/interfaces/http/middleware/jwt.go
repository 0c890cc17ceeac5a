package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coderr/backend/internal/infrastructure/auth"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
)

// Accepted Authorization schemes. "Token" is what the frontend sends.
var authSchemes = []string{"Token ", "Bearer "}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional for checking revoked tokens
	TokenBlacklist auth.TokenBlacklist
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// JWTAuthMiddleware creates JWT authentication middleware without revocation checks
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{JWTService: jwtService})
}

// JWTAuthMiddlewareWithConfig creates JWT authentication middleware with custom config
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, errMissingCredentials)
			return
		}

		tokenString, ok := extractToken(authHeader)
		if !ok {
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		if cfg.TokenBlacklist != nil && claims.ID != "" {
			blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// fail open: a blacklist outage must not lock every user out
				if cfg.Logger != nil {
					cfg.Logger.Error("Failed to check token blacklist",
						zap.String("jti", claims.ID),
						zap.Error(err))
				}
			} else if blacklisted {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.Uint("user_id", claims.UserID),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

var errMissingCredentials = errors.New("missing authorization header")

func extractToken(header string) (string, bool) {
	for _, scheme := range authSchemes {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			token := strings.TrimSpace(header[len(scheme):])
			return token, token != ""
		}
	}
	return "", false
}

// handleAuthError answers 401 with the error envelope
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code := dto.ErrCodeUnauthorized
	message := "Authentication credentials were not provided."

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired."
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code = dto.ErrCodeTokenRevoked
		message = "Token has been revoked."
	case errors.Is(err, errMissingCredentials):
	default:
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token."
	}

	abortWithError(c, http.StatusUnauthorized, code, message)
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the authenticated user id, 0 when anonymous
func GetJWTUserID(c *gin.Context) uint {
	if userID, exists := c.Get(JWTUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetJWTUsername retrieves the username from JWT claims in context
func GetJWTUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}

// GetTokenID returns the jti of the presented token and how long it stays valid
func GetTokenID(c *gin.Context) (string, time.Duration) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return "", 0
	}
	return claims.ID, claims.GetRemainingTTL()
}
