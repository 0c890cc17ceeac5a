package offer

import (
	"context"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOfferRepository is a mock implementation of offer.OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) Save(ctx context.Context, o *offer.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

func (m *MockOfferRepository) List(ctx context.Context, filter offer.ListFilter) ([]offer.ListItem, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]offer.ListItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockOfferRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository only answers FindByID; offer tests need nothing else
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

func userWithProfile(id uint, profileType identity.ProfileType) *identity.User {
	u := &identity.User{Username: "user", IsActive: true, Profile: identity.NewProfile(profileType)}
	u.ID = id
	return u
}

func validDetails() []DetailRequest {
	out := make([]DetailRequest, 0, 3)
	for i, t := range []string{"basic", "standard", "premium"} {
		revisions := i + 1
		days := 7 - i*2
		price := decimal.NewFromInt(int64(100 * (i + 1)))
		out = append(out, DetailRequest{
			Title:              t + " package",
			Revisions:          &revisions,
			DeliveryTimeInDays: &days,
			Price:              &price,
			Features:           []string{"Logo"},
			OfferType:          t,
		})
	}
	return out
}

// storedOffer builds a persisted offer with detail ids 11, 12 and 13
func storedOffer(id, ownerID uint) *offer.Offer {
	o, err := offer.NewOffer(ownerID, "Grafikdesign-Paket", "Ein umfassendes Paket", nil, toDetailInputs(validDetails()))
	if err != nil {
		panic(err)
	}
	o.ID = id
	o.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	o.UpdatedAt = o.CreatedAt
	for i, d := range o.Details {
		d.ID = uint(11 + i)
		d.OfferID = id
	}
	return o
}
