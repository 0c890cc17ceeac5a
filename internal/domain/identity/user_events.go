package identity

import "github.com/coderr/backend/internal/domain/shared"

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered = "UserRegistered"
	EventTypeProfileUpdated = "ProfileUpdated"
)

// UserRegisteredEvent is published after a user and profile were created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Username    string      `json:"username"`
	ProfileType ProfileType `json:"profile_type"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	var profileType ProfileType
	if user.Profile != nil {
		profileType = user.Profile.Type
	}
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Username:        user.Username,
		ProfileType:     profileType,
	}
}

// ProfileUpdatedEvent is published after a profile or its file changed
type ProfileUpdatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewProfileUpdatedEvent creates a new ProfileUpdatedEvent
func NewProfileUpdatedEvent(user *User) *ProfileUpdatedEvent {
	return &ProfileUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProfileUpdated, AggregateTypeUser, user.ID),
		Username:        user.Username,
	}
}
