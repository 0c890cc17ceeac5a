package models

import (
	"testing"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", UserModel{}.TableName())
	assert.Equal(t, "profiles", ProfileModel{}.TableName())
	assert.Equal(t, "offers", OfferModel{}.TableName())
	assert.Equal(t, "offer_details", OfferDetailModel{}.TableName())
	assert.Equal(t, "orders", OrderModel{}.TableName())
	assert.Equal(t, "reviews", ReviewModel{}.TableName())
	assert.Len(t, AllModels(), 6)
}

func TestUserModel_ToDomainAttachesPreloadedProfile(t *testing.T) {
	now := time.Now()
	m := &UserModel{
		BaseModel: BaseModel{ID: 4, CreatedAt: now, UpdatedAt: now},
		Username:  "alice",
		IsActive:  true,
		Profile:   &ProfileModel{UserID: 4, Type: identity.ProfileTypeBusiness, Tel: "123"},
	}

	user := m.ToDomain()

	assert.Equal(t, uint(4), user.ID)
	require.NotNil(t, user.Profile)
	assert.True(t, user.IsBusiness())
	assert.Equal(t, "123", user.Profile.Tel)

	m.Profile = nil
	assert.Nil(t, m.ToDomain().Profile)
}

func TestOfferModel_FromDomainCopiesDetails(t *testing.T) {
	o := &offer.Offer{
		UserID: 2,
		Title:  "Logo",
		Details: []*offer.OfferDetail{
			{Title: "Basic", Price: decimal.NewFromInt(50), OfferType: offer.OfferTypeBasic},
		},
	}
	o.ID = 9

	m := OfferModelFromDomain(o)

	assert.Equal(t, uint(9), m.ID)
	require.Len(t, m.Details, 1)
	assert.Equal(t, []string{}, m.Details[0].Features)
	assert.Equal(t, offer.OfferTypeBasic, m.Details[0].OfferType)
}

func TestOrderModel_NilFeaturesBecomeEmpty(t *testing.T) {
	m := OrderModelFromDomain(&order.Order{Status: order.StatusInProgress})
	assert.NotNil(t, m.Features)

	m.Features = nil
	assert.Equal(t, []string{}, m.ToDomain().Features)
}
