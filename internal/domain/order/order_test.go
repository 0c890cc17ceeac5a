package order

import (
	"testing"

	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetail() *offer.OfferDetail {
	return &offer.OfferDetail{
		ID:                 11,
		OfferID:            3,
		Title:              "Logo Design",
		Revisions:          3,
		DeliveryTimeInDays: 5,
		Price:              decimal.RequireFromString("150.00"),
		Features:           []string{"Logo Design", "Visitenkarten"},
		OfferType:          offer.OfferTypeStandard,
	}
}

func TestNewOrder(t *testing.T) {
	detail := testDetail()

	o := NewOrder(2, 9, detail)

	assert.Equal(t, uint(2), o.CustomerUserID)
	assert.Equal(t, uint(9), o.BusinessUserID)
	assert.Equal(t, "Logo Design", o.Title)
	assert.Equal(t, 3, o.Revisions)
	assert.Equal(t, 5, o.DeliveryTimeInDays)
	assert.Equal(t, "150.00", o.Price.StringFixed(2))
	assert.Equal(t, offer.OfferTypeStandard, o.OfferType)
	assert.Equal(t, StatusInProgress, o.Status)
	assert.Equal(t, []string{"Logo Design", "Visitenkarten"}, o.Features)
}

func TestNewOrder_SnapshotIsDetached(t *testing.T) {
	detail := testDetail()
	o := NewOrder(2, 9, detail)

	detail.Features[0] = "changed"
	detail.Price = decimal.NewFromInt(1)
	detail.Title = "changed"

	assert.Equal(t, "Logo Design", o.Features[0])
	assert.Equal(t, "150.00", o.Price.StringFixed(2))
	assert.Equal(t, "Logo Design", o.Title)
}

func TestNewOrder_NilFeatures(t *testing.T) {
	detail := testDetail()
	detail.Features = nil

	o := NewOrder(2, 9, detail)

	assert.NotNil(t, o.Features)
	assert.Empty(t, o.Features)
}

func TestOrder_ChangeStatus(t *testing.T) {
	o := NewOrder(2, 9, testDetail())
	before := o.UpdatedAt

	require.NoError(t, o.ChangeStatus(StatusCompleted))
	assert.Equal(t, StatusCompleted, o.Status)
	assert.False(t, o.UpdatedAt.Before(before))

	require.NoError(t, o.ChangeStatus(StatusInProgress))
	assert.Equal(t, StatusInProgress, o.Status)

	err := o.ChangeStatus("shipped")
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "status", de.Field)
	assert.Equal(t, StatusInProgress, o.Status)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("cancelled")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = ParseStatus("")
	assert.Error(t, err)
	_, err = ParseStatus("COMPLETED")
	assert.Error(t, err)
}

func TestOrder_IsParticipant(t *testing.T) {
	o := NewOrder(2, 9, testDetail())
	assert.True(t, o.IsParticipant(2))
	assert.True(t, o.IsParticipant(9))
	assert.False(t, o.IsParticipant(5))
}
