package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coderr/backend/internal/infrastructure/auth"
	"github.com/coderr/backend/internal/infrastructure/config"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, userID uint) *auth.IssuedToken {
	t.Helper()
	token, err := svc.GenerateToken(userID, "testuser")
	require.NoError(t, err)
	return token
}

func newJWTRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		jti, ttl := GetTokenID(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id":  GetJWTUserID(c),
			"username": GetJWTUsername(c),
			"jti":      jti,
			"has_ttl":  ttl > 0,
		})
	})
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestJWTAuthMiddleware_Schemes(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 42)
	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc})

	for _, scheme := range []string{"Token ", "Bearer ", "token "} {
		t.Run(scheme, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(AuthHeaderKey, scheme+token.Token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, float64(42), body["user_id"])
			assert.Equal(t, "testuser", body["username"])
			assert.Equal(t, token.ID, body["jti"])
			assert.Equal(t, true, body["has_ttl"])
		})
	}
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 1)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"unknown scheme", "Basic " + token.Token, dto.ErrCodeTokenInvalid},
		{"empty token", "Token ", dto.ErrCodeTokenInvalid},
		{"garbage token", "Token not-a-jwt", dto.ErrCodeTokenInvalid},
	}

	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc, Logger: zap.NewNop()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	token := issueToken(t, svc, 1)
	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, "Bearer "+token.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decodeError(t, w).Error.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 1)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Token "+token.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)

	require.NoError(t, blacklist.AddToBlacklist(context.Background(), token.ID, time.Hour))

	w := send()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Error.Code)
}

type brokenBlacklist struct{}

func (brokenBlacklist) AddToBlacklist(context.Context, string, time.Duration) error { return nil }
func (brokenBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuthMiddleware_BlacklistFailureFailsOpen(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token := issueToken(t, svc, 1)
	router := newJWTRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: brokenBlacklist{}, Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(AuthHeaderKey, "Token "+token.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_OnError(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	var got error
	router := newJWTRouter(JWTMiddlewareConfig{
		JWTService: svc,
		OnError: func(c *gin.Context, err error) {
			got = err
			c.AbortWithStatus(http.StatusTeapot)
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Error(t, got)
}

func TestGetJWTUserID_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, GetJWTUserID(c))
	assert.Nil(t, GetJWTClaims(c))
	jti, ttl := GetTokenID(c)
	assert.Empty(t, jti)
	assert.Zero(t, ttl)
}
