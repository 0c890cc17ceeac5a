package identity

import (
	"strings"
	"testing"
	"time"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	return de.Field
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with profile", func(t *testing.T) {
		user, err := NewUser("alice", "alice@example.com", "secret", ProfileTypeBusiness)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsStaff)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "secret", user.PasswordHash)
		require.NotNil(t, user.Profile)
		assert.Equal(t, ProfileTypeBusiness, user.Profile.Type)
		assert.True(t, user.IsBusiness())
		assert.False(t, user.IsCustomer())
		assert.False(t, user.DateJoined.IsZero())
	})

	t.Run("trims and normalizes username", func(t *testing.T) {
		// fullwidth letters fold to ASCII under NFKC
		user, err := NewUser("  ｂｏｂ  ", "bob@example.com", "secret", ProfileTypeCustomer)

		require.NoError(t, err)
		assert.Equal(t, "bob", user.Username)
	})

	t.Run("lower-cases email domain only", func(t *testing.T) {
		user, err := NewUser("carol", "Carol@EXAMPLE.COM", "secret", ProfileTypeCustomer)

		require.NoError(t, err)
		assert.Equal(t, "Carol@example.com", user.Email)
	})

	t.Run("accepts django username charset", func(t *testing.T) {
		_, err := NewUser("a.b+c-d_e@f", "x@example.com", "secret", ProfileTypeCustomer)
		assert.NoError(t, err)
	})

	t.Run("rejects empty username", func(t *testing.T) {
		_, err := NewUser("   ", "x@example.com", "secret", ProfileTypeCustomer)
		assert.Equal(t, "username", fieldOf(t, err))
	})

	t.Run("rejects username with spaces", func(t *testing.T) {
		_, err := NewUser("john doe", "x@example.com", "secret", ProfileTypeCustomer)
		assert.Equal(t, "username", fieldOf(t, err))
	})

	t.Run("rejects too long username", func(t *testing.T) {
		_, err := NewUser(strings.Repeat("a", 151), "x@example.com", "secret", ProfileTypeCustomer)
		assert.Equal(t, "username", fieldOf(t, err))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("dave", "not-an-email", "secret", ProfileTypeCustomer)
		assert.Equal(t, "email", fieldOf(t, err))
	})

	t.Run("rejects unknown profile type", func(t *testing.T) {
		_, err := NewUser("dave", "dave@example.com", "secret", ProfileType("admin"))
		assert.Equal(t, "type", fieldOf(t, err))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := NewUser("dave", "dave@example.com", "", ProfileTypeCustomer)
		assert.Equal(t, "password", fieldOf(t, err))
	})

	t.Run("rejects password longer than 72 bytes", func(t *testing.T) {
		_, err := NewUser("dave", "dave@example.com", strings.Repeat("p", 73), ProfileTypeCustomer)
		assert.Equal(t, "password", fieldOf(t, err))
	})
}

func TestUser_VerifyPassword(t *testing.T) {
	user, err := NewUser("erin", "erin@example.com", "correct horse", ProfileTypeCustomer)
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("correct horse"))
	assert.False(t, user.VerifyPassword("wrong"))
	assert.False(t, user.VerifyPassword(""))
}

func TestUser_SetName(t *testing.T) {
	user := &User{FirstName: "Old", LastName: "Name"}
	first := "New"

	require.NoError(t, user.SetName(&first, nil))
	assert.Equal(t, "New", user.FirstName)
	assert.Equal(t, "Name", user.LastName)

	long := strings.Repeat("x", 151)
	err := user.SetName(nil, &long)
	assert.Equal(t, "last_name", fieldOf(t, err))
	assert.Equal(t, "Name", user.LastName)
}

func TestUser_SetEmail(t *testing.T) {
	user := &User{Email: "old@example.com"}

	require.NoError(t, user.SetEmail("New@Mail.Example.ORG"))
	assert.Equal(t, "New@mail.example.org", user.Email)

	err := user.SetEmail("broken@")
	assert.Equal(t, "email", fieldOf(t, err))
	assert.Equal(t, "New@mail.example.org", user.Email)
}

func TestUser_LoginState(t *testing.T) {
	user := &User{IsActive: true}
	assert.True(t, user.CanLogin())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	user.RecordLogin(at)
	require.NotNil(t, user.LastLoginAt)
	assert.Equal(t, at, *user.LastLoginAt)

	user.IsActive = false
	assert.False(t, user.CanLogin())
}

func TestUser_ProfileTypeWithoutProfile(t *testing.T) {
	user := &User{}
	assert.False(t, user.IsBusiness())
	assert.False(t, user.IsCustomer())
}

func TestNewUserRegisteredEvent(t *testing.T) {
	user, err := NewUser("frank", "frank@example.com", "secret", ProfileTypeBusiness)
	require.NoError(t, err)
	user.ID = 42

	event := NewUserRegisteredEvent(user)

	assert.Equal(t, EventTypeUserRegistered, event.EventType())
	assert.Equal(t, AggregateTypeUser, event.AggregateType())
	assert.Equal(t, uint(42), event.AggregateID())
	assert.Equal(t, ProfileTypeBusiness, event.ProfileType)
}
