package identity

import (
	"time"
	"unicode/utf8"

	"github.com/coderr/backend/internal/domain/shared"
)

// ProfileType distinguishes buyers from sellers
type ProfileType string

const (
	ProfileTypeCustomer ProfileType = "customer"
	ProfileTypeBusiness ProfileType = "business"
)

// IsValid reports whether t is a known profile type
func (t ProfileType) IsValid() bool {
	return t == ProfileTypeCustomer || t == ProfileTypeBusiness
}

const (
	maxLocationLength     = 255
	maxTelLength          = 20
	maxWorkingHoursLength = 255
)

// Profile holds the public, user-editable part of an account.
// It shares its primary key with the owning User.
type Profile struct {
	UserID       uint
	File         *string
	Location     string
	Tel          string
	Description  string
	WorkingHours string
	Type         ProfileType
	CreatedAt    time.Time
}

// NewProfile creates an empty profile of the given type
func NewProfile(profileType ProfileType) *Profile {
	if profileType == "" {
		profileType = ProfileTypeCustomer
	}
	return &Profile{
		Type:      profileType,
		CreatedAt: time.Now(),
	}
}

// ProfileChanges lists the profile fields a PATCH may touch. Nil means unchanged.
type ProfileChanges struct {
	Location     *string
	Tel          *string
	Description  *string
	WorkingHours *string
}

// Apply validates and applies the changes
func (p *Profile) Apply(c ProfileChanges) error {
	if c.Location != nil && utf8.RuneCountInString(*c.Location) > maxLocationLength {
		return shared.NewFieldError("location", "Ensure this field has no more than 255 characters.")
	}
	if c.Tel != nil && utf8.RuneCountInString(*c.Tel) > maxTelLength {
		return shared.NewFieldError("tel", "Ensure this field has no more than 20 characters.")
	}
	if c.WorkingHours != nil && utf8.RuneCountInString(*c.WorkingHours) > maxWorkingHoursLength {
		return shared.NewFieldError("working_hours", "Ensure this field has no more than 255 characters.")
	}

	if c.Location != nil {
		p.Location = *c.Location
	}
	if c.Tel != nil {
		p.Tel = *c.Tel
	}
	if c.Description != nil {
		p.Description = *c.Description
	}
	if c.WorkingHours != nil {
		p.WorkingHours = *c.WorkingHours
	}
	return nil
}

// SetFile replaces the stored file key and returns the previous one
func (p *Profile) SetFile(key *string) *string {
	prev := p.File
	p.File = key
	return prev
}
