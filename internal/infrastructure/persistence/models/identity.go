package models

import (
	"time"

	"github.com/coderr/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	BaseModel
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email        string `gorm:"type:varchar(254);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	FirstName    string `gorm:"type:varchar(150);not null;default:''"`
	LastName     string `gorm:"type:varchar(150);not null;default:''"`
	IsStaff      bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	DateJoined   time.Time     `gorm:"not null"`
	Profile      *ProfileModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
// The profile is attached only when it was preloaded.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		Username:          m.Username,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		IsStaff:           m.IsStaff,
		IsActive:          m.IsActive,
		LastLoginAt:       m.LastLoginAt,
		DateJoined:        m.DateJoined,
	}
	if m.Profile != nil {
		user.Profile = m.Profile.ToDomain()
	}
	return user
}

// FromDomain populates the model from a domain User, without its profile
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.IsStaff = u.IsStaff
	m.IsActive = u.IsActive
	m.LastLoginAt = u.LastLoginAt
	m.DateJoined = u.DateJoined
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// ProfileModel is the persistence model for a user's Profile.
// It shares its primary key with users.id.
type ProfileModel struct {
	UserID       uint                 `gorm:"primaryKey;autoIncrement:false"`
	File         *string              `gorm:"type:varchar(255)"`
	Location     string               `gorm:"type:varchar(255);not null;default:''"`
	Tel          string               `gorm:"type:varchar(20);not null;default:''"`
	Description  string               `gorm:"type:text;not null;default:''"`
	WorkingHours string               `gorm:"type:varchar(255);not null;default:''"`
	Type         identity.ProfileType `gorm:"type:varchar(10);not null;default:'customer';index"`
	CreatedAt    time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		UserID:       m.UserID,
		File:         m.File,
		Location:     m.Location,
		Tel:          m.Tel,
		Description:  m.Description,
		WorkingHours: m.WorkingHours,
		Type:         m.Type,
		CreatedAt:    m.CreatedAt,
	}
}

// ProfileModelFromDomain creates a persistence model for the given owner
func ProfileModelFromDomain(userID uint, p *identity.Profile) *ProfileModel {
	return &ProfileModel{
		UserID:       userID,
		File:         p.File,
		Location:     p.Location,
		Tel:          p.Tel,
		Description:  p.Description,
		WorkingHours: p.WorkingHours,
		Type:         p.Type,
		CreatedAt:    p.CreatedAt,
	}
}
