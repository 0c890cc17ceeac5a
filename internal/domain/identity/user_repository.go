package identity

import (
	"context"
	"time"
)

// UserRepository defines the interface for user and profile persistence.
// Users are always loaded together with their profile.
type UserRepository interface {
	// Create inserts the user and its profile in one transaction and sets user.ID
	Create(ctx context.Context, user *User) error

	// Save updates the user row and its profile in one transaction
	Save(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByUsername finds a user by exact username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// FindByProfileType returns all users with the given profile type ordered by username
	FindByProfileType(ctx context.Context, profileType ProfileType) ([]*User, error)

	// CountByProfileType counts profiles of the given type
	CountByProfileType(ctx context.Context, profileType ProfileType) (int64, error)

	// RecordLogin stores the last login timestamp
	RecordLogin(ctx context.Context, id uint, at time.Time) error
}
