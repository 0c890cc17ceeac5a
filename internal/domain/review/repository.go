package review

import (
	"context"

	"github.com/coderr/backend/internal/domain/shared"
)

// Sortable columns of the review list
const (
	SortUpdatedAt = "updated_at"
	SortRating    = "rating"
)

// SortableFields lists the accepted ordering fields
var SortableFields = []string{SortUpdatedAt, SortRating}

// DefaultOrdering is newest-updated first
var DefaultOrdering = shared.SortField{Field: SortUpdatedAt, Desc: true}

// ListFilter narrows and orders the review list
type ListFilter struct {
	BusinessUserID *uint
	ReviewerID     *uint
	Ordering       []shared.SortField
}

// Summary aggregates all reviews
type Summary struct {
	Count int64
	// AverageRating is zero when Count is zero
	AverageRating float64
}

// ReviewRepository defines the interface for review persistence
type ReviewRepository interface {
	// Create inserts a review. A duplicate (business user, reviewer) pair
	// yields ErrAlreadyReviewed.
	Create(ctx context.Context, review *Review) error

	Save(ctx context.Context, review *Review) error

	Delete(ctx context.Context, id uint) error

	FindByID(ctx context.Context, id uint) (*Review, error)

	List(ctx context.Context, filter ListFilter) ([]*Review, error)

	ExistsByPair(ctx context.Context, businessUserID, reviewerID uint) (bool, error)

	Summarize(ctx context.Context) (Summary, error)
}
