package offer

import (
	"context"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Sortable columns of the offer list
const (
	SortUpdatedAt = "updated_at"
	SortMinPrice  = "min_price"
)

// SortableFields lists the accepted ordering fields
var SortableFields = []string{SortUpdatedAt, SortMinPrice}

// DefaultOrdering is newest-updated first
var DefaultOrdering = shared.SortField{Field: SortUpdatedAt, Desc: true}

// ListFilter narrows and orders the offer list
type ListFilter struct {
	CreatorID       *uint
	MinPrice        *decimal.Decimal
	MaxDeliveryTime *int
	// every term must occur in title or description
	SearchTerms []string
	Ordering    []shared.SortField
	Offset      int
	Limit       int
}

// Owner is the public part of the offer owner shown in listings
type Owner struct {
	FirstName string
	LastName  string
	Username  string
}

// ListItem is an offer row of the list endpoint
type ListItem struct {
	Offer *Offer
	Owner Owner
}

// OfferRepository defines the interface for offer persistence
type OfferRepository interface {
	// Create inserts the offer and its details in one transaction
	Create(ctx context.Context, offer *Offer) error

	// Save updates the offer row and all its details in one transaction
	Save(ctx context.Context, offer *Offer) error

	// Delete removes the offer; details cascade
	Delete(ctx context.Context, id uint) error

	// FindByID loads an offer with its details
	FindByID(ctx context.Context, id uint) (*Offer, error)

	// FindDetailByID loads a single detail
	FindDetailByID(ctx context.Context, id uint) (*OfferDetail, error)

	// List returns a filtered, ordered page and the total match count
	List(ctx context.Context, filter ListFilter) ([]ListItem, int64, error)

	// Count returns the number of offers
	Count(ctx context.Context) (int64, error)
}
