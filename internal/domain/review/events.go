package review

import "github.com/coderr/backend/internal/domain/shared"

// Aggregate type constant for Review
const AggregateTypeReview = "Review"

// Review domain event types
const (
	EventTypeReviewCreated = "ReviewCreated"
	EventTypeReviewUpdated = "ReviewUpdated"
	EventTypeReviewDeleted = "ReviewDeleted"
)

// ReviewEvent is published whenever a review was created, changed or removed
type ReviewEvent struct {
	shared.BaseDomainEvent
	BusinessUserID uint `json:"business_user_id"`
	ReviewerID     uint `json:"reviewer_id"`
	Rating         int  `json:"rating"`
}

func newReviewEvent(eventType string, r *Review) *ReviewEvent {
	return &ReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID),
		BusinessUserID:  r.BusinessUserID,
		ReviewerID:      r.ReviewerID,
		Rating:          r.Rating,
	}
}

// NewReviewCreatedEvent creates a ReviewCreated event
func NewReviewCreatedEvent(r *Review) *ReviewEvent {
	return newReviewEvent(EventTypeReviewCreated, r)
}

// NewReviewUpdatedEvent creates a ReviewUpdated event
func NewReviewUpdatedEvent(r *Review) *ReviewEvent {
	return newReviewEvent(EventTypeReviewUpdated, r)
}

// NewReviewDeletedEvent creates a ReviewDeleted event
func NewReviewDeletedEvent(r *Review) *ReviewEvent {
	return newReviewEvent(EventTypeReviewDeleted, r)
}
