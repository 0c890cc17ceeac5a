package identity

import (
	"context"

	"github.com/coderr/backend/internal/domain/shared"
)

// RequireProfileType loads the acting user and fails with ErrForbidden unless
// its stored profile has the wanted type. A user without a profile, or one that
// no longer exists, is rejected as well.
func RequireProfileType(ctx context.Context, repo UserRepository, userID uint, want ProfileType) (*User, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrForbidden
		}
		return nil, err
	}
	if user.Profile == nil || user.Profile.Type != want {
		return nil, shared.ErrForbidden
	}
	return user, nil
}
