package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubUsers struct {
	identity.UserRepository
	users map[uint]*identity.User
	err   error
}

func (s stubUsers) FindByID(_ context.Context, id uint) (*identity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func userWithType(profileType identity.ProfileType) *identity.User {
	u := &identity.User{Username: string(profileType)}
	if profileType != "" {
		u.Profile = identity.NewProfile(profileType)
	}
	return u
}

func newProfileTypeRouter(userID uint, guard gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.POST("/offers/", func(c *gin.Context) {
		if userID != 0 {
			c.Set(JWTUserIDKey, userID)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestRequireProfileType(t *testing.T) {
	users := stubUsers{users: map[uint]*identity.User{
		1: userWithType(identity.ProfileTypeBusiness),
		2: userWithType(identity.ProfileTypeCustomer),
		3: userWithType(""),
	}}
	guard := RequireProfileType(users, identity.ProfileTypeBusiness)

	tests := []struct {
		name   string
		userID uint
		status int
	}{
		{"matching type passes", 1, http.StatusCreated},
		{"other type is forbidden", 2, http.StatusForbidden},
		{"missing profile is forbidden", 3, http.StatusForbidden},
		{"unknown user is forbidden", 99, http.StatusForbidden},
		{"no authenticated user", 0, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			// an invalid body must not matter to a caller who is turned away
			req := httptest.NewRequest(http.MethodPost, "/offers/", strings.NewReader(`{"title": ""`))
			newProfileTypeRouter(tt.userID, guard).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				resp := decodeError(t, w)
				assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
				assert.Equal(t, shared.ErrForbidden.Message, resp.Detail)
			}
		})
	}
}

func TestRequireProfileTypeWithConfig(t *testing.T) {
	t.Run("custom message and denial log", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		guard := RequireProfileTypeWithConfig(identity.ProfileTypeCustomer, ProfileTypeConfig{
			Users:   stubUsers{users: map[uint]*identity.User{1: userWithType(identity.ProfileTypeBusiness)}},
			Logger:  zap.New(core),
			Message: "Only customer users are allowed to perform this action.",
		})

		w := httptest.NewRecorder()
		newProfileTypeRouter(1, guard).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/offers/", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Only customer users are allowed to perform this action.", decodeError(t, w).Detail)
		assert.Equal(t, 1, logs.FilterMessage("Profile type denied").Len())
	})

	t.Run("repository failure is a server error", func(t *testing.T) {
		guard := RequireProfileTypeWithConfig(identity.ProfileTypeCustomer, ProfileTypeConfig{
			Users: stubUsers{err: assert.AnError},
		})

		w := httptest.NewRecorder()
		newProfileTypeRouter(1, guard).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/offers/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Error.Code)
	})
}
