package offer

import "github.com/coderr/backend/internal/domain/shared"

// Aggregate type constant for Offer
const AggregateTypeOffer = "Offer"

// Offer domain event types
const (
	EventTypeOfferCreated = "OfferCreated"
	EventTypeOfferUpdated = "OfferUpdated"
	EventTypeOfferDeleted = "OfferDeleted"
)

// OfferCreatedEvent is published after an offer and its details were stored
type OfferCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uint   `json:"user_id"`
	Title    string `json:"title"`
	MinPrice string `json:"min_price"`
}

// NewOfferCreatedEvent creates a new OfferCreatedEvent
func NewOfferCreatedEvent(o *Offer) *OfferCreatedEvent {
	return &OfferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferCreated, AggregateTypeOffer, o.ID),
		UserID:          o.UserID,
		Title:           o.Title,
		MinPrice:        o.MinPrice().StringFixed(2),
	}
}

// OfferUpdatedEvent is published after a patch or image upload
type OfferUpdatedEvent struct {
	shared.BaseDomainEvent
	UserID uint `json:"user_id"`
}

// NewOfferUpdatedEvent creates a new OfferUpdatedEvent
func NewOfferUpdatedEvent(o *Offer) *OfferUpdatedEvent {
	return &OfferUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferUpdated, AggregateTypeOffer, o.ID),
		UserID:          o.UserID,
	}
}

// OfferDeletedEvent is published after an offer was removed
type OfferDeletedEvent struct {
	shared.BaseDomainEvent
	UserID uint `json:"user_id"`
}

// NewOfferDeletedEvent creates a new OfferDeletedEvent
func NewOfferDeletedEvent(o *Offer) *OfferDeletedEvent {
	return &OfferDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferDeleted, AggregateTypeOffer, o.ID),
		UserID:          o.UserID,
	}
}
