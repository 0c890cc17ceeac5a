package review

import (
	"time"

	"github.com/coderr/backend/internal/domain/review"
)

// CreateReviewRequest is the body of POST /api/reviews/
type CreateReviewRequest struct {
	BusinessUser *uint  `json:"business_user" binding:"required"`
	Rating       *int   `json:"rating" binding:"required"`
	Description  string `json:"description"`
}

// UpdateReviewRequest is the body of PATCH /api/reviews/{id}/.
// UnknownKeys lists body keys other than rating and description.
type UpdateReviewRequest struct {
	Rating      *int     `json:"rating"`
	Description *string  `json:"description"`
	UnknownKeys []string `json:"-"`
}

// ListQuery holds the parsed query parameters of the review list
type ListQuery struct {
	BusinessUserID *uint
	ReviewerID     *uint
	Ordering       string
}

// ReviewResponse is the representation of a review
type ReviewResponse struct {
	ID           uint      `json:"id"`
	BusinessUser uint      `json:"business_user"`
	Reviewer     uint      `json:"reviewer"`
	Rating       int       `json:"rating"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToReviewResponse converts a domain review
func ToReviewResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		BusinessUser: r.BusinessUserID,
		Reviewer:     r.ReviewerID,
		Rating:       r.Rating,
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
