package offer

import (
	"testing"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validDetails() []DetailInput {
	return []DetailInput{
		{Title: "Basic", Revisions: 1, DeliveryTimeInDays: 7, Price: decimal.RequireFromString("100"), Features: []string{"Logo"}, OfferType: OfferTypeBasic},
		{Title: "Standard", Revisions: 3, DeliveryTimeInDays: 5, Price: decimal.RequireFromString("200.50"), Features: []string{"Logo", "Card"}, OfferType: OfferTypeStandard},
		{Title: "Premium", Revisions: 5, DeliveryTimeInDays: 3, Price: decimal.RequireFromString("500"), OfferType: OfferTypePremium},
	}
}

func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, field, de.Field)
	if message != "" {
		assert.Equal(t, message, de.Message)
	}
}

func newTestOffer(t *testing.T) *Offer {
	t.Helper()
	o, err := NewOffer(7, "Grafikdesign-Paket", "Ein umfassendes Paket", nil, validDetails())
	require.NoError(t, err)
	for i, d := range o.Details {
		d.ID = uint(i + 1)
	}
	return o
}

func TestNewOffer(t *testing.T) {
	t.Run("creates offer with three details", func(t *testing.T) {
		o := newTestOffer(t)

		assert.Equal(t, uint(7), o.UserID)
		assert.Equal(t, "Grafikdesign-Paket", o.Title)
		require.Len(t, o.Details, 3)
		assert.Equal(t, []string{}, o.DetailByType(OfferTypePremium).Features)
		assert.True(t, o.MinPrice().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 3, o.MinDeliveryTime())
	})

	t.Run("rejects fewer than three details", func(t *testing.T) {
		_, err := NewOffer(1, "t", "d", nil, validDetails()[:2])
		requireFieldError(t, err, "details", MsgExactlyThreeDetails)
	})

	t.Run("rejects more than three details", func(t *testing.T) {
		details := append(validDetails(), validDetails()[0])
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", MsgExactlyThreeDetails)
	})

	t.Run("rejects duplicated offer type", func(t *testing.T) {
		details := validDetails()
		details[2].OfferType = OfferTypeBasic
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", MsgUniqueAcrossDetails)
	})

	t.Run("rejects unknown offer type as invalid choice", func(t *testing.T) {
		details := validDetails()
		details[2].OfferType = "gold"
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", `offer_type: "gold" is not a valid choice.`)
	})

	t.Run("invalid offer type is reported before detail count", func(t *testing.T) {
		details := validDetails()[:2]
		details[1].OfferType = "ultimate"
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", `offer_type: "ultimate" is not a valid choice.`)
	})

	t.Run("rejects missing offer type on create", func(t *testing.T) {
		details := validDetails()
		details[0].OfferType = ""
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", "offer_type: This field is required.")
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := NewOffer(1, "  ", "d", nil, validDetails())
		requireFieldError(t, err, "title", "")
	})

	t.Run("rejects negative revisions", func(t *testing.T) {
		details := validDetails()
		details[0].Revisions = -1
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", "")
	})

	t.Run("rejects price with three decimals", func(t *testing.T) {
		details := validDetails()
		details[1].Price = decimal.RequireFromString("10.005")
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", "price: Ensure that there are no more than 2 decimal places.")
	})

	t.Run("rejects price above column precision", func(t *testing.T) {
		details := validDetails()
		details[1].Price = decimal.NewFromInt(100000)
		_, err := NewOffer(1, "t", "d", nil, details)
		requireFieldError(t, err, "details", "")
	})
}

func TestOffer_Apply(t *testing.T) {
	t.Run("patches detail by type and keeps identity", func(t *testing.T) {
		o := newTestOffer(t)
		basic := o.DetailByType(OfferTypeBasic)
		basicID := basic.ID

		_, err := o.Apply(Patch{
			Title: ptr("Updated"),
			Details: []DetailPatch{
				{OfferType: OfferTypeBasic, Price: ptr(decimal.NewFromInt(80)), Features: ptr([]string{"A", "B"})},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Updated", o.Title)
		assert.Equal(t, basicID, o.DetailByType(OfferTypeBasic).ID)
		assert.True(t, basic.Price.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, []string{"A", "B"}, basic.Features)
		assert.Equal(t, "Basic", basic.Title)
		assert.Equal(t, 1, basic.Revisions)
		assert.Len(t, o.Details, 3)
		assert.True(t, o.MinPrice().Equal(decimal.NewFromInt(80)))
	})

	t.Run("rejects duplicate types in patch", func(t *testing.T) {
		o := newTestOffer(t)
		_, err := o.Apply(Patch{Details: []DetailPatch{
			{OfferType: OfferTypeBasic, Title: ptr("x")},
			{OfferType: OfferTypeBasic, Title: ptr("y")},
		}})
		requireFieldError(t, err, "details", MsgUniqueInPatch)
	})

	t.Run("rejects missing offer type", func(t *testing.T) {
		o := newTestOffer(t)
		_, err := o.Apply(Patch{Details: []DetailPatch{{Title: ptr("x")}}})
		requireFieldError(t, err, "details", "offer_type is required for each detail patch.")
	})

	t.Run("rejects invalid offer type", func(t *testing.T) {
		o := newTestOffer(t)
		_, err := o.Apply(Patch{Details: []DetailPatch{{OfferType: "gold"}}})
		requireFieldError(t, err, "details", `offer_type: "gold" is not a valid choice.`)
	})

	t.Run("rejects type absent from offer", func(t *testing.T) {
		o := newTestOffer(t)
		o.Details = o.Details[:2]
		_, err := o.Apply(Patch{Details: []DetailPatch{{OfferType: OfferTypePremium, Revisions: ptr(2)}}})
		requireFieldError(t, err, "details", "OfferDetail with offer_type 'premium' not found.")
	})

	t.Run("failed patch leaves offer unchanged", func(t *testing.T) {
		o := newTestOffer(t)
		_, err := o.Apply(Patch{
			Title: ptr("Changed"),
			Details: []DetailPatch{
				{OfferType: OfferTypeBasic, Title: ptr("New basic")},
				{OfferType: OfferTypePremium, DeliveryTimeInDays: ptr(-3)},
			},
		})

		require.Error(t, err)
		assert.Equal(t, "Grafikdesign-Paket", o.Title)
		assert.Equal(t, "Basic", o.DetailByType(OfferTypeBasic).Title)
		assert.Equal(t, 3, o.DetailByType(OfferTypePremium).DeliveryTimeInDays)
	})

	t.Run("clearing image returns previous key", func(t *testing.T) {
		o := newTestOffer(t)
		o.Image = ptr("offer_images/1/a.png")

		prev, err := o.Apply(Patch{ClearImage: true})

		require.NoError(t, err)
		assert.Nil(t, o.Image)
		require.NotNil(t, prev)
		assert.Equal(t, "offer_images/1/a.png", *prev)
	})

	t.Run("same image is not reported as replaced", func(t *testing.T) {
		o := newTestOffer(t)
		o.Image = ptr("offer_images/1/a.png")

		prev, err := o.Apply(Patch{Image: ptr("offer_images/1/a.png")})

		require.NoError(t, err)
		assert.Nil(t, prev)
	})
}

func TestOffer_SetImage(t *testing.T) {
	o := newTestOffer(t)

	assert.Nil(t, o.SetImage("offer_images/1/a.png"))
	prev := o.SetImage("offer_images/1/b.png")

	require.NotNil(t, prev)
	assert.Equal(t, "offer_images/1/a.png", *prev)
	assert.Equal(t, "offer_images/1/b.png", *o.Image)
}

func TestOffer_MinValuesWithoutDetails(t *testing.T) {
	o := &Offer{}
	assert.True(t, o.MinPrice().IsZero())
	assert.Equal(t, 0, o.MinDeliveryTime())
}

func TestOffer_IsOwnedBy(t *testing.T) {
	o := newTestOffer(t)
	assert.True(t, o.IsOwnedBy(7))
	assert.False(t, o.IsOwnedBy(8))
}
