package review

import (
	"github.com/coderr/backend/internal/domain/shared"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ErrAlreadyReviewed is returned when a reviewer rates the same business user twice
var ErrAlreadyReviewed = shared.NewDomainError("INVALID_INPUT", "You have already reviewed this business user.")

// Review is a customer's rating of a business user. A reviewer may rate a
// given business user at most once.
type Review struct {
	shared.BaseAggregateRoot
	BusinessUserID uint
	ReviewerID     uint
	Rating         int
	Description    string
}

// NewReview validates the rating and builds a review
func NewReview(businessUserID, reviewerID uint, rating int, description string) (*Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	return &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BusinessUserID:    businessUserID,
		ReviewerID:        reviewerID,
		Rating:            rating,
		Description:       description,
	}, nil
}

// Update changes rating and/or description. Nil leaves the value unchanged.
func (r *Review) Update(rating *int, description *string) error {
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return err
		}
		r.Rating = *rating
	}
	if description != nil {
		r.Description = *description
	}
	r.Touch()
	return nil
}

// IsWrittenBy reports whether userID authored the review
func (r *Review) IsWrittenBy(userID uint) bool {
	return r.ReviewerID == userID
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewFieldError("rating", "rating must be between 1 and 5.")
	}
	return nil
}
