package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "alice", identity.ProfileTypeBusiness)
	require.NotZero(t, user.ID)
	assert.Equal(t, user.ID, user.Profile.UserID)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	require.NotNil(t, found.Profile)
	assert.True(t, found.IsBusiness())
	assert.True(t, found.VerifyPassword("secret"))

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByID(ctx, 9999)
	assert.True(t, shared.IsNotFound(err))
}

func TestGormUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "bob", identity.ProfileTypeCustomer)

	dup, err := identity.NewUser("bob", "other@example.com", "secret", identity.ProfileTypeBusiness)
	require.NoError(t, err)

	err = NewGormUserRepository(db).Create(context.Background(), dup)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	exists, err := NewGormUserRepository(db).ExistsByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, exists)

	var profiles int64
	require.NoError(t, db.Table("profiles").Count(&profiles).Error)
	assert.Equal(t, int64(1), profiles, "failed insert must not leave a profile behind")
}

func TestGormUserRepository_Save(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "carol", identity.ProfileTypeBusiness)

	first, last := "Carol", "Smith"
	require.NoError(t, user.SetName(&first, &last))
	location, tel := "Berlin", "0301234"
	require.NoError(t, user.Profile.Apply(identity.ProfileChanges{Location: &location, Tel: &tel}))
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol", found.FirstName)
	assert.Equal(t, "Smith", found.LastName)
	assert.Equal(t, "Berlin", found.Profile.Location)
	assert.Equal(t, "0301234", found.Profile.Tel)

	ghost := &identity.User{Username: "ghost"}
	ghost.ID = 12345
	assert.ErrorIs(t, repo.Save(ctx, ghost), shared.ErrNotFound)
}

func TestGormUserRepository_ProfileTypeQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "zeta", identity.ProfileTypeBusiness)
	seedUser(t, db, "alpha", identity.ProfileTypeBusiness)
	seedUser(t, db, "mike", identity.ProfileTypeCustomer)

	business, err := repo.FindByProfileType(ctx, identity.ProfileTypeBusiness)
	require.NoError(t, err)
	require.Len(t, business, 2)
	assert.Equal(t, "alpha", business[0].Username)
	assert.Equal(t, "zeta", business[1].Username)
	assert.True(t, business[0].IsBusiness())

	count, err := repo.CountByProfileType(ctx, identity.ProfileTypeBusiness)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountByProfileType(ctx, identity.ProfileTypeCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormUserRepository_RecordLogin(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "dave", identity.ProfileTypeCustomer)

	at := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, at.Equal(*found.LastLoginAt))

	assert.ErrorIs(t, repo.RecordLogin(ctx, 999, at), shared.ErrNotFound)
}
