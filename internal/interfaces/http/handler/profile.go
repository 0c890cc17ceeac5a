package handler

import (
	"fmt"
	"net/http"

	"github.com/coderr/backend/internal/application/identity"
	domain "github.com/coderr/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves user profiles
type ProfileHandler struct {
	BaseHandler
	profileService *identity.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *identity.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// Me godoc
// @ID           redirectOwnProfile
// @Summary      Own profile
// @Description  Redirects to the profile of the authenticated user
// @Tags         profiles
// @Security     TokenAuth
// @Success      302
// @Failure      401 {object} ErrorResponse
// @Router       /profile/ [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/profile/%d/", userID))
}

// Get godoc
// @ID           getProfile
// @Summary      Get a profile
// @Tags         profiles
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Success      200 {object} identity.ProfileResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /profile/{id}/ [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateProfile
// @Summary      Update a profile
// @Description  Only the owner may update. Read-only keys in the body are ignored.
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Param        request body identity.UpdateProfileRequest true "Profile fields"
// @Success      200 {object} identity.ProfileResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /profile/{id}/ [patch]
func (h *ProfileHandler) Update(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	var req identity.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.profileService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadFile godoc
// @ID           uploadProfileFile
// @Summary      Upload the profile picture
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "User ID"
// @Param        file formData file true "Profile file"
// @Success      200 {object} identity.ProfileResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /profile/{id}/file/ [post]
func (h *ProfileHandler) UploadFile(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	file, err := readUpload(c, "file")
	if err != nil {
		h.UploadError(c, "file", err)
		return
	}
	resp, err := h.profileService.UploadFile(c.Request.Context(), actorID, id, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBusiness godoc
// @ID           listBusinessProfiles
// @Summary      List business profiles
// @Tags         profiles
// @Produce      json
// @Security     TokenAuth
// @Success      200 {array} identity.ProfileListItem
// @Failure      401 {object} ErrorResponse
// @Router       /profiles/business/ [get]
func (h *ProfileHandler) ListBusiness(c *gin.Context) {
	h.list(c, domain.ProfileTypeBusiness)
}

// ListCustomer godoc
// @ID           listCustomerProfiles
// @Summary      List customer profiles
// @Tags         profiles
// @Produce      json
// @Security     TokenAuth
// @Success      200 {array} identity.ProfileListItem
// @Failure      401 {object} ErrorResponse
// @Router       /profiles/customer/ [get]
func (h *ProfileHandler) ListCustomer(c *gin.Context) {
	h.list(c, domain.ProfileTypeCustomer)
}

func (h *ProfileHandler) list(c *gin.Context, profileType domain.ProfileType) {
	items, err := h.profileService.ListByType(c.Request.Context(), profileType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
