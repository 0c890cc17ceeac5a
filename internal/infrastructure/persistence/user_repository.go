package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUsernameTaken is returned when the unique username index rejects an insert
var ErrUsernameTaken = shared.NewFieldError("username", "A user with that username already exists.")

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user and its profile in one transaction
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	if user.Profile == nil {
		user.Profile = identity.NewProfile(identity.ProfileTypeCustomer)
	}
	model := models.UserModelFromDomain(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		return tx.Create(models.ProfileModelFromDomain(model.ID, user.Profile)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUsernameTaken
		}
		return err
	}
	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	user.Profile.UserID = model.ID
	return nil
}

// Save updates the user row and its profile in one transaction
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserModel{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"username":      user.Username,
				"email":         user.Email,
				"password_hash": user.PasswordHash,
				"first_name":    user.FirstName,
				"last_name":     user.LastName,
				"is_staff":      user.IsStaff,
				"is_active":     user.IsActive,
				"last_login_at": user.LastLoginAt,
				"updated_at":    user.UpdatedAt,
			})
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if user.Profile == nil {
			return nil
		}
		return tx.Save(models.ProfileModelFromDomain(user.ID, user.Profile)).Error
	})
}

// FindByID finds a user by ID together with its profile
func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*identity.User, error) {
	return r.first(ctx, "users.id = ?", id)
}

// FindByUsername finds a user by exact username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.first(ctx, "users.username = ?", username)
}

func (r *GormUserRepository) first(ctx context.Context, query string, args ...any) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Where(query, args...).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByUsername checks if a username is taken
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByProfileType returns all users with the given profile type ordered by username
func (r *GormUserRepository) FindByProfileType(ctx context.Context, profileType identity.ProfileType) ([]*identity.User, error) {
	var userModels []*models.UserModel
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Joins("JOIN profiles ON profiles.user_id = users.id").
		Where("profiles.type = ?", profileType).
		Order("users.username ASC").
		Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*identity.User, len(userModels))
	for i, model := range userModels {
		users[i] = model.ToDomain()
	}
	return users, nil
}

// CountByProfileType counts profiles of the given type
func (r *GormUserRepository) CountByProfileType(ctx context.Context, profileType identity.ProfileType) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("type = ?", profileType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RecordLogin stores the last login timestamp
func (r *GormUserRepository) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
