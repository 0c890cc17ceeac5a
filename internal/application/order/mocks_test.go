package order

import (
	"context"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/order"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByParticipant(ctx context.Context, userID uint) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByBusinessAndStatus(ctx context.Context, businessUserID uint, status order.Status) (int64, error) {
	args := m.Called(ctx, businessUserID, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockOfferRepository answers the two lookups order creation needs
type MockOfferRepository struct {
	mock.Mock
	offer.OfferRepository
}

func (m *MockOfferRepository) FindByID(ctx context.Context, id uint) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) FindDetailByID(ctx context.Context, id uint) (*offer.OfferDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.OfferDetail), args.Error(1)
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
