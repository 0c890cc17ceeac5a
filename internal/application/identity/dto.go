package identity

import (
	"time"

	"github.com/coderr/backend/internal/domain/identity"
)

// RegisterRequest is the body of POST /api/registration/
type RegisterRequest struct {
	Username         string `json:"username" binding:"required"`
	Email            string `json:"email" binding:"required"`
	Password         string `json:"password" binding:"required"`
	RepeatedPassword string `json:"repeated_password" binding:"required"`
	Type             string `json:"type" binding:"required"`
}

// LoginRequest is the body of POST /api/login/
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by registration and login
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
}

// UpdateProfileRequest lists the writable profile keys. Read-only keys in the
// body (user, username, type, file, created_at) are not bound.
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Location     *string `json:"location"`
	Tel          *string `json:"tel"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours"`
}

// IsEmpty reports whether no writable key was sent
func (r UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil &&
		r.Location == nil && r.Tel == nil && r.Description == nil && r.WorkingHours == nil
}

// ProfileResponse is the detail view of a profile
type ProfileResponse struct {
	User         uint      `json:"user"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	File         *string   `json:"file"`
	Location     string    `json:"location"`
	Tel          string    `json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `json:"working_hours"`
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileListItem is a row of the business and customer profile lists.
// Missing values are rendered as empty strings.
type ProfileListItem struct {
	User         uint   `json:"user"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	File         string `json:"file"`
	Location     string `json:"location"`
	Tel          string `json:"tel"`
	Description  string `json:"description"`
	WorkingHours string `json:"working_hours"`
	Type         string `json:"type"`
}

func toProfileResponse(u *identity.User, fileURL *string) *ProfileResponse {
	resp := &ProfileResponse{
		User:      u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		File:      fileURL,
		Email:     u.Email,
	}
	if p := u.Profile; p != nil {
		resp.Location = p.Location
		resp.Tel = p.Tel
		resp.Description = p.Description
		resp.WorkingHours = p.WorkingHours
		resp.Type = string(p.Type)
		resp.CreatedAt = p.CreatedAt
	}
	return resp
}

func toProfileListItem(u *identity.User, fileURL *string) ProfileListItem {
	item := ProfileListItem{
		User:      u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if fileURL != nil {
		item.File = *fileURL
	}
	if p := u.Profile; p != nil {
		item.Location = p.Location
		item.Tel = p.Tel
		item.Description = p.Description
		item.WorkingHours = p.WorkingHours
		item.Type = string(p.Type)
	}
	return item
}
