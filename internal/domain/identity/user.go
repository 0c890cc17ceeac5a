package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/coderr/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	maxUsernameLength = 150
	maxNameLength     = 150
	maxEmailLength    = 254
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
)

var (
	usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+\-]+$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]{2,}$`)
	lowerDomain   = cases.Lower(language.Und)
)

// User is the account aggregate. Every user owns exactly one Profile.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsStaff      bool
	IsActive     bool
	LastLoginAt  *time.Time
	DateJoined   time.Time
	Profile      *Profile
}

// NewUser creates an active user together with its profile
func NewUser(username, email, password string, profileType ProfileType) (*User, error) {
	username = NormalizeUsername(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !profileType.IsValid() {
		return nil, shared.NewFieldError("type", "\""+string(profileType)+"\" is not a valid choice.")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		IsActive:          true,
	}
	user.DateJoined = user.CreatedAt
	user.Profile = NewProfile(profileType)

	return user, nil
}

// NormalizeUsername trims and applies NFKC so visually identical names compare equal
func NormalizeUsername(username string) string {
	return norm.NFKC.String(strings.TrimSpace(username))
}

// SetEmail validates and stores the email, lower-casing its domain part
func (u *User) SetEmail(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	u.Email = normalized
	u.Touch()
	return nil
}

// SetName sets first and/or last name. Nil leaves the value unchanged.
func (u *User) SetName(firstName, lastName *string) error {
	if firstName != nil {
		if utf8.RuneCountInString(*firstName) > maxNameLength {
			return shared.NewFieldError("first_name", "Ensure this field has no more than 150 characters.")
		}
		u.FirstName = *firstName
	}
	if lastName != nil {
		if utf8.RuneCountInString(*lastName) > maxNameLength {
			return shared.NewFieldError("last_name", "Ensure this field has no more than 150 characters.")
		}
		u.LastName = *lastName
	}
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// CanLogin returns true if the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// IsBusiness reports whether the user has a business profile
func (u *User) IsBusiness() bool {
	return u.Profile != nil && u.Profile.Type == ProfileTypeBusiness
}

// IsCustomer reports whether the user has a customer profile
func (u *User) IsCustomer() bool {
	return u.Profile != nil && u.Profile.Type == ProfileTypeCustomer
}

// Validation functions

func validateUsername(username string) error {
	if username == "" {
		return shared.NewFieldError("username", "This field may not be blank.")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return shared.NewFieldError("username", "Ensure this field has no more than 150 characters.")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewFieldError("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewFieldError("password", "This field may not be blank.")
	}
	if len(password) > maxPasswordBytes {
		return shared.NewFieldError("password", "Ensure this field has no more than 72 bytes.")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", shared.NewFieldError("email", "This field may not be blank.")
	}
	if len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return "", shared.NewFieldError("email", "Enter a valid email address.")
	}
	at := strings.LastIndex(email, "@")
	return email[:at] + "@" + lowerDomain.String(email[at+1:]), nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
