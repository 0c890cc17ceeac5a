package handler

import (
	"github.com/coderr/backend/internal/application/identity"
	"github.com/coderr/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register godoc
// @ID           registerUser
// @Summary      Register a new user
// @Description  Creates a user with a customer or business profile and returns a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Registration data"
// @Success      201 {object} identity.AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /registration/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login godoc
// @ID           loginUser
// @Summary      User login
// @Description  Authenticate with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Login credentials"
// @Success      200 {object} identity.AuthResponse
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @ID           logoutUser
// @Summary      User logout
// @Description  Revokes the presented token
// @Tags         auth
// @Security     TokenAuth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Router       /logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	jti, remaining := middleware.GetTokenID(c)
	if err := h.authService.Logout(c.Request.Context(), userID, jti, remaining); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
