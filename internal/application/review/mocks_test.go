package review

import (
	"context"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/review"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockReviewRepository is a mock implementation of review.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) Save(ctx context.Context, r *review.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.Review), args.Error(1)
}

func (m *MockReviewRepository) List(ctx context.Context, filter review.ListFilter) ([]*review.Review, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*review.Review), args.Error(1)
}

func (m *MockReviewRepository) ExistsByPair(ctx context.Context, businessUserID, reviewerID uint) (bool, error) {
	args := m.Called(ctx, businessUserID, reviewerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReviewRepository) Summarize(ctx context.Context) (review.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(review.Summary), args.Error(1)
}

// MockUserRepository only answers FindByID
type MockUserRepository struct {
	mock.Mock
	identity.UserRepository
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
