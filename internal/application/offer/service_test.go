package offer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coderr/backend/internal/application/media"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type serviceFixture struct {
	offers    *MockOfferRepository
	users     *MockUserRepository
	publisher *MockEventPublisher
	store     *storage.StubObjectStorage
	svc       *Service
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		offers:    new(MockOfferRepository),
		users:     new(MockUserRepository),
		publisher: new(MockEventPublisher),
		store:     storage.NewStubObjectStorage("http://testserver/media"),
	}
	f.svc = NewService(f.offers, f.users, f.store, DefaultPagination, zap.NewNop())
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func publishedType(eventType string) interface{} {
	return mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == eventType
	})
}

func intPtr(v int) *int { return &v }

func TestPagination_Resolve(t *testing.T) {
	p := Pagination{DefaultPageSize: 6, MaxPageSize: 3}
	assert.Equal(t, 6, p.resolve(nil))
	assert.Equal(t, 2, p.resolve(intPtr(2)))
	assert.Equal(t, 3, p.resolve(intPtr(50)))
	assert.Equal(t, 6, p.resolve(intPtr(0)))
	assert.Equal(t, 6, Pagination{}.resolve(nil))
}

func TestSplitSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"logo", "design", "web"}, splitSearchTerms(" logo,design  web,"))
	assert.Empty(t, splitSearchTerms(" , "))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("builds filter and items", func(t *testing.T) {
		f := newFixture()
		o := storedOffer(1, 5)
		o.Image = strPtr("offer_images/1/a.png")
		minPrice := decimal.NewFromInt(50)
		creator := uint(5)

		f.offers.On("List", mock.Anything, mock.MatchedBy(func(filter offer.ListFilter) bool {
			return filter.Offset == 3 && filter.Limit == 3 &&
				*filter.CreatorID == 5 && filter.MinPrice.Equal(minPrice) &&
				len(filter.SearchTerms) == 2 &&
				len(filter.Ordering) == 1 && filter.Ordering[0].Field == offer.SortMinPrice && !filter.Ordering[0].Desc
		})).Return([]offer.ListItem{{Offer: o, Owner: offer.Owner{FirstName: "Max", Username: "max"}}}, int64(4), nil)

		page, err := f.svc.List(ctx, ListQuery{
			Page:      2,
			PageSize:  intPtr(10),
			CreatorID: &creator,
			MinPrice:  &minPrice,
			Search:    "logo design",
			Ordering:  "min_price,unknown",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.False(t, page.HasNext())
		assert.True(t, page.HasPrevious())
		require.Len(t, page.Items, 1)

		item := page.Items[0]
		assert.Equal(t, uint(5), item.User)
		assert.Equal(t, "100.00", item.MinPrice)
		assert.Equal(t, 3, item.MinDeliveryTime)
		assert.Equal(t, "/offerdetails/11/", item.Details[0].URL)
		assert.Equal(t, "max", item.UserDetails.Username)
		assert.Equal(t, "", item.UserDetails.LastName)
		require.NotNil(t, item.Image)
		assert.Equal(t, "http://testserver/media/offer_images/1/a.png", *item.Image)
	})

	t.Run("default ordering and page size", func(t *testing.T) {
		f := newFixture()
		f.offers.On("List", mock.Anything, mock.MatchedBy(func(filter offer.ListFilter) bool {
			return filter.Offset == 0 && filter.Limit == 6 &&
				filter.Ordering[0] == offer.DefaultOrdering && len(filter.SearchTerms) == 0
		})).Return([]offer.ListItem{}, int64(0), nil)

		page, err := f.svc.List(ctx, ListQuery{})

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("page past the end", func(t *testing.T) {
		f := newFixture()
		f.offers.On("List", mock.Anything, mock.Anything).Return([]offer.ListItem{}, int64(6), nil)

		_, err := f.svc.List(ctx, ListQuery{Page: 2})

		assert.ErrorIs(t, err, ErrInvalidPage)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.offers.On("FindByID", ctx, uint(1)).Return(storedOffer(1, 5), nil)
	f.offers.On("FindByID", ctx, uint(2)).Return(nil, shared.ErrNotFound)

	view, err := f.svc.Get(ctx, 1, "http://localhost:8000/")
	require.NoError(t, err)
	require.Len(t, view.Details, 3)
	assert.Equal(t, "http://localhost:8000/api/offerdetails/12/", view.Details[1].URL)
	assert.Nil(t, view.Image)

	_, err = f.svc.Get(ctx, 2, "")
	assert.True(t, shared.IsNotFound(err))
}

func TestService_GetDetail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	d := storedOffer(1, 5).Details[2]
	f.offers.On("FindDetailByID", ctx, uint(13)).Return(d, nil)

	resp, err := f.svc.GetDetail(ctx, 13)

	require.NoError(t, err)
	assert.Equal(t, "premium", resp.OfferType)
	assert.Equal(t, "300.00", resp.Price)
	assert.Equal(t, []string{"Logo"}, resp.Features)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("business user creates offer", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, uint(5)).Return(userWithProfile(5, identity.ProfileTypeBusiness), nil)
		f.offers.On("Create", mock.Anything, mock.AnythingOfType("*offer.Offer")).
			Run(func(args mock.Arguments) {
				o := args.Get(1).(*offer.Offer)
				o.ID = 9
				for i, d := range o.Details {
					d.ID = uint(100 + i)
				}
			}).Return(nil)
		f.publisher.On("Publish", mock.Anything, publishedType(offer.EventTypeOfferCreated)).Return(nil)

		resp, err := f.svc.Create(ctx, 5, CreateOfferRequest{Title: "Logo", Description: "d", Details: validDetails()})

		require.NoError(t, err)
		assert.Equal(t, uint(9), resp.ID)
		assert.Nil(t, resp.Image)
		require.Len(t, resp.Details, 3)
		assert.Equal(t, uint(100), resp.Details[0].ID)
		assert.Equal(t, "basic", resp.Details[0].OfferType)
		f.publisher.AssertExpectations(t)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, uint(6)).Return(userWithProfile(6, identity.ProfileTypeCustomer), nil)

		_, err := f.svc.Create(ctx, 6, CreateOfferRequest{Title: "Logo", Details: validDetails()})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("two details", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, uint(5)).Return(userWithProfile(5, identity.ProfileTypeBusiness), nil)

		_, err := f.svc.Create(ctx, 5, CreateOfferRequest{Title: "Logo", Details: validDetails()[:2]})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, offer.MsgExactlyThreeDetails, de.Message)
	})

	t.Run("publish failure does not fail create", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindByID", mock.Anything, uint(5)).Return(userWithProfile(5, identity.ProfileTypeBusiness), nil)
		f.offers.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus stopped"))

		_, err := f.svc.Create(ctx, 5, CreateOfferRequest{Title: "Logo", Details: validDetails()})

		assert.NoError(t, err)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner patches one tier", func(t *testing.T) {
		f := newFixture()
		o := storedOffer(1, 5)
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(o, nil)
		f.offers.On("Save", mock.Anything, o).Return(nil)
		f.publisher.On("Publish", mock.Anything, publishedType(offer.EventTypeOfferUpdated)).Return(nil)

		price := decimal.RequireFromString("120.50")
		resp, err := f.svc.Update(ctx, 5, 1, PatchOfferRequest{
			Title:   strPtr("Updated"),
			Details: []DetailPatchRequest{{OfferType: "standard", Price: &price}},
		})

		require.NoError(t, err)
		assert.Equal(t, "Updated", resp.Title)
		assert.Equal(t, uint(12), resp.Details[1].ID)
		assert.Equal(t, "120.50", resp.Details[1].Price)
		assert.Equal(t, "100.00", resp.Details[0].Price)
	})

	t.Run("clearing the image deletes the object", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.store.Upload(ctx, "offer_images/1/old.png", []byte("x"), "image/png"))
		o := storedOffer(1, 5)
		o.Image = strPtr("offer_images/1/old.png")
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(o, nil)
		f.offers.On("Save", mock.Anything, o).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Update(ctx, 5, 1, PatchOfferRequest{ClearImage: true})

		require.NoError(t, err)
		assert.Nil(t, resp.Image)
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("unknown tier leaves offer untouched", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)

		_, err := f.svc.Update(ctx, 5, 1, PatchOfferRequest{
			Details: []DetailPatchRequest{{OfferType: "gold", Title: strPtr("x")}},
		})

		require.Error(t, err)
		f.offers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)

		_, err := f.svc.Update(ctx, 6, 1, PatchOfferRequest{Title: strPtr("x")})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("missing offer", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(2)).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Update(ctx, 6, 2, PatchOfferRequest{Title: strPtr("x")})

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestService_UploadImage(t *testing.T) {
	ctx := context.Background()
	png := media.File{Filename: "cover.png", ContentType: "image/png", Data: []byte("png")}

	t.Run("stores image and removes the old one", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.store.Upload(ctx, "offer_images/1/old.png", []byte("x"), "image/png"))
		o := storedOffer(1, 5)
		o.Image = strPtr("offer_images/1/old.png")
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(o, nil)
		f.offers.On("Save", mock.Anything, o).Return(nil)
		f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.UploadImage(ctx, 5, 1, png)

		require.NoError(t, err)
		require.NotNil(t, resp.Image)
		assert.True(t, strings.HasPrefix(*resp.Image, "http://testserver/media/offer_images/1/"))
		assert.Equal(t, 1, f.store.Len())
		exists, _ := f.store.ObjectExists(ctx, "offer_images/1/old.png")
		assert.False(t, exists)
	})

	t.Run("rejects non-images", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)

		_, err := f.svc.UploadImage(ctx, 5, 1, media.File{Filename: "a.txt", ContentType: "text/plain", Data: []byte("x")})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "image", de.Field)
		assert.Equal(t, 0, f.store.Len())
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes offer and image", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.store.Upload(ctx, "offer_images/1/a.png", []byte("x"), "image/png"))
		o := storedOffer(1, 5)
		o.Image = strPtr("offer_images/1/a.png")
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(o, nil)
		f.offers.On("Delete", mock.Anything, uint(1)).Return(nil)
		f.publisher.On("Publish", mock.Anything, publishedType(offer.EventTypeOfferDeleted)).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, 5, 1))
		assert.Equal(t, 0, f.store.Len())
		f.offers.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)

		err := f.svc.Delete(ctx, 7, 1)

		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.offers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func strPtr(s string) *string { return &s }

func TestService_Patch_DecodesOnlyForOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner never reaches the body", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)
		decoded := false

		_, err := f.svc.Patch(ctx, 6, 1, func(*PatchOfferRequest) error {
			decoded = true
			return assert.AnError
		})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.False(t, decoded)
	})

	t.Run("owner gets the decode error", func(t *testing.T) {
		f := newFixture()
		f.offers.On("FindByID", mock.Anything, uint(1)).Return(storedOffer(1, 5), nil)

		_, err := f.svc.Patch(ctx, 5, 1, func(*PatchOfferRequest) error { return assert.AnError })

		assert.ErrorIs(t, err, assert.AnError)
		f.offers.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
