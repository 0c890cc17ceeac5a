package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/coderr/backend/internal/application/media"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newProfileServiceForTest(repo *MockUserRepository) (*ProfileService, *storage.StubObjectStorage) {
	store := storage.NewStubObjectStorage("http://testserver/media")
	return NewProfileService(repo, store, zap.NewNop()), store
}

func TestProfileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("renders missing file as null", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)

		resp, err := svc.Get(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, uint(1), resp.User)
		assert.Equal(t, "anna", resp.Username)
		assert.Nil(t, resp.File)
		assert.Equal(t, "business", resp.Type)
	})

	t.Run("resolves stored file to URL", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		user := newStoredUser(1, "anna", identity.ProfileTypeBusiness)
		user.Profile.File = strPtr("profile_files/1/a.png")
		repo.On("FindByID", ctx, uint(1)).Return(user, nil)

		resp, err := svc.Get(ctx, 1)

		require.NoError(t, err)
		require.NotNil(t, resp.File)
		assert.Equal(t, "http://testserver/media/profile_files/1/a.png", *resp.File)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(9)).Return(nil, shared.ErrNotFound)

		_, err := svc.Get(ctx, 9)

		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("user without profile is missing", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		user := newStoredUser(2, "orphan", identity.ProfileTypeCustomer)
		user.Profile = nil
		repo.On("FindByID", ctx, uint(2)).Return(user, nil)

		_, err := svc.Get(ctx, 2)

		assert.True(t, shared.IsNotFound(err))
	})
}

func TestProfileService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("owner updates fields", func(t *testing.T) {
		repo := new(MockUserRepository)
		publisher := new(MockEventPublisher)
		svc, _ := newProfileServiceForTest(repo)
		svc.SetEventPublisher(publisher)

		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := svc.Update(ctx, 1, 1, UpdateProfileRequest{
			FirstName: strPtr("Anna"),
			Location:  strPtr("Berlin"),
			Email:     strPtr("New@Example.COM"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Anna", resp.FirstName)
		assert.Equal(t, "Last", resp.LastName)
		assert.Equal(t, "Berlin", resp.Location)
		assert.Equal(t, "New@example.com", resp.Email)
		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)

		_, err := svc.Update(ctx, 2, 1, UpdateProfileRequest{Location: strPtr("Paris")})

		assert.ErrorIs(t, err, shared.ErrForbidden)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing profile wins over permission", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(5)).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, 2, 5, UpdateProfileRequest{Location: strPtr("Paris")})

		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("rejects overlong tel", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)

		_, err := svc.Update(ctx, 1, 1, UpdateProfileRequest{Tel: strPtr(strings.Repeat("1", 21))})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "tel", de.Field)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProfileService_UploadFile(t *testing.T) {
	ctx := context.Background()
	png := media.File{Filename: "me.PNG", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

	t.Run("replaces previous file", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, store := newProfileServiceForTest(repo)
		require.NoError(t, store.Upload(ctx, "profile_files/1/old.png", []byte("old"), "image/png"))

		user := newStoredUser(1, "anna", identity.ProfileTypeBusiness)
		user.Profile.File = strPtr("profile_files/1/old.png")
		repo.On("FindByID", ctx, uint(1)).Return(user, nil)
		repo.On("Save", ctx, user).Return(nil)

		resp, err := svc.UploadFile(ctx, 1, 1, png)

		require.NoError(t, err)
		require.NotNil(t, resp.File)
		assert.True(t, strings.HasPrefix(*resp.File, "http://testserver/media/profile_files/1/"))
		assert.True(t, strings.HasSuffix(*resp.File, ".png"))

		exists, err := store.ObjectExists(ctx, "profile_files/1/old.png")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("removes upload when save fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, store := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		_, err := svc.UploadFile(ctx, 1, 1, png)

		require.Error(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("empty file", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, store := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)

		_, err := svc.UploadFile(ctx, 1, 1, media.File{Filename: "x.png"})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "file", de.Field)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, store := newProfileServiceForTest(repo)
		repo.On("FindByID", ctx, uint(1)).Return(newStoredUser(1, "anna", identity.ProfileTypeBusiness), nil)

		_, err := svc.UploadFile(ctx, 3, 1, png)

		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Equal(t, 0, store.Len())
	})
}

func TestProfileService_ListByType(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc, _ := newProfileServiceForTest(repo)

	withFile := newStoredUser(2, "bert", identity.ProfileTypeCustomer)
	withFile.Profile.File = strPtr("profile_files/2/b.jpg")
	repo.On("FindByProfileType", ctx, identity.ProfileTypeCustomer).
		Return([]*identity.User{newStoredUser(1, "anna", identity.ProfileTypeCustomer), withFile}, nil)

	items, err := svc.ListByType(ctx, identity.ProfileTypeCustomer)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "", items[0].File)
	assert.Equal(t, "http://testserver/media/profile_files/2/b.jpg", items[1].File)
	assert.Equal(t, "customer", items[1].Type)
}
