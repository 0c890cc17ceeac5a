package identity

import (
	"context"
	"errors"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for unknown users, wrong passwords and inactive accounts alike
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username/password.")

// ErrPasswordMismatch is returned when the two registration passwords differ
var ErrPasswordMismatch = shared.NewFieldError("repeated_password", "Passwords do not match")

// AuthService handles registration, login and logout
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		eventPublisher: shared.NoopEventPublisher{},
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the publisher for UserRegistered events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// Register creates a user with its profile and returns a token for it
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.RepeatedPassword {
		return nil, ErrPasswordMismatch
	}

	username := identity.NormalizeUsername(req.Username)
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		s.logger.Error("Failed to check username", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewFieldError("username", "A user with that username already exists.")
	}

	user, err := identity.NewUser(username, req.Email, req.Password, identity.ProfileType(req.Type))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) {
			s.logger.Error("Failed to create user", zap.String("username", username), zap.Error(err))
		}
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, identity.NewUserRegisteredEvent(user)); err != nil {
		s.logger.Warn("Failed to publish UserRegistered event", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("type", string(user.Profile.Type)),
	)
	return s.issue(user)
}

// Login verifies credentials and returns a fresh token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	username := identity.NormalizeUsername(req.Username)
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if shared.IsNotFound(err) {
			s.logger.Warn("Login for unknown user", zap.String("username", username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	user.RecordLogin(now)
	if err := s.userRepo.RecordLogin(ctx, user.ID, now); err != nil {
		// the token is still valid without the timestamp
		s.logger.Error("Failed to record login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	s.logger.Info("User logged in", zap.Uint("user_id", user.ID))
	return s.issue(user)
}

// Logout revokes the token with the given id for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, userID uint, jti string, remaining time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, jti, remaining); err != nil {
		s.logger.Error("Failed to revoke token", zap.Uint("user_id", userID), zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}
	s.logger.Info("User logged out", zap.Uint("user_id", userID))
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}
	return &AuthResponse{
		Token:    token.Token,
		Username: user.Username,
		Email:    user.Email,
		UserID:   user.ID,
	}, nil
}
