package identity

import (
	"context"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindByProfileType(ctx context.Context, profileType identity.ProfileType) ([]*identity.User, error) {
	args := m.Called(ctx, profileType)
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) CountByProfileType(ctx context.Context, profileType identity.ProfileType) (int64, error) {
	args := m.Called(ctx, profileType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newStoredUser(id uint, username string, profileType identity.ProfileType) *identity.User {
	user := &identity.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
		IsActive:  true,
		Profile:   identity.NewProfile(profileType),
	}
	user.ID = id
	user.Profile.UserID = id
	return user
}
