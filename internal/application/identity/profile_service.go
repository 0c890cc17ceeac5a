package identity

import (
	"context"

	"github.com/coderr/backend/internal/application/media"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProfileService reads and edits user profiles
type ProfileService struct {
	userRepo       identity.UserRepository
	storage        media.ObjectStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo identity.UserRepository, storage media.ObjectStorage, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo:       userRepo,
		storage:        storage,
		eventPublisher: shared.NoopEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for ProfileUpdated events
func (s *ProfileService) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// Get returns the profile of userID
func (s *ProfileService) Get(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.findWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(user, s.fileURL(ctx, user.Profile.File)), nil
}

// Update applies a partial update. Only the owner may edit a profile.
func (s *ProfileService) Update(ctx context.Context, actorID, userID uint, req UpdateProfileRequest) (*ProfileResponse, error) {
	user, err := s.findWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actorID != user.ID {
		return nil, shared.ErrForbidden
	}

	if err := user.SetName(req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	if req.Email != nil {
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	err = user.Profile.Apply(identity.ProfileChanges{
		Location:     req.Location,
		Tel:          req.Tel,
		Description:  req.Description,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save profile", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	s.publishUpdated(ctx, user)

	return toProfileResponse(user, s.fileURL(ctx, user.Profile.File)), nil
}

// UploadFile stores file as the profile file of userID and removes the previous one
func (s *ProfileService) UploadFile(ctx context.Context, actorID, userID uint, file media.File) (*ProfileResponse, error) {
	user, err := s.findWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actorID != user.ID {
		return nil, shared.ErrForbidden
	}
	if err := file.Validate("file", false); err != nil {
		return nil, err
	}

	key := media.NewKey(media.ProfileFilePrefix, user.ID, file.Filename)
	if err := s.storage.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		s.logger.Error("Failed to upload profile file", zap.Uint("user_id", userID), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to store file")
	}

	previous := user.Profile.SetFile(&key)
	user.Touch()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save profile file", zap.Uint("user_id", userID), zap.Error(err))
		s.removeObject(ctx, key)
		return nil, err
	}
	if previous != nil && *previous != key {
		s.removeObject(ctx, *previous)
	}
	s.publishUpdated(ctx, user)

	s.logger.Info("Profile file uploaded", zap.Uint("user_id", userID), zap.String("key", key))
	return toProfileResponse(user, s.fileURL(ctx, user.Profile.File)), nil
}

// ListByType returns all profiles of the given type ordered by username
func (s *ProfileService) ListByType(ctx context.Context, profileType identity.ProfileType) ([]ProfileListItem, error) {
	users, err := s.userRepo.FindByProfileType(ctx, profileType)
	if err != nil {
		s.logger.Error("Failed to list profiles", zap.String("type", string(profileType)), zap.Error(err))
		return nil, err
	}
	items := make([]ProfileListItem, 0, len(users))
	for _, u := range users {
		var file *string
		if u.Profile != nil {
			file = s.fileURL(ctx, u.Profile.File)
		}
		items = append(items, toProfileListItem(u, file))
	}
	return items, nil
}

func (s *ProfileService) findWithProfile(ctx context.Context, userID uint) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// a user without a profile is treated as missing
	if user.Profile == nil {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

// fileURL resolves a stored key; resolution failures render as no file
func (s *ProfileService) fileURL(ctx context.Context, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url, err := s.storage.URL(ctx, *key)
	if err != nil {
		s.logger.Warn("Failed to resolve file URL", zap.String("key", *key), zap.Error(err))
		return nil
	}
	return &url
}

func (s *ProfileService) removeObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProfileService) publishUpdated(ctx context.Context, user *identity.User) {
	if err := s.eventPublisher.Publish(ctx, identity.NewProfileUpdatedEvent(user)); err != nil {
		s.logger.Warn("Failed to publish ProfileUpdated event", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
