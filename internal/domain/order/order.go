package order

import (
	"fmt"

	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts raw input into a Status
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", shared.NewFieldError("status", fmt.Sprintf("\"%s\" is not a valid choice.", raw))
	}
	return s, nil
}

// Order is a customer's purchase of one offer tier. The tier fields are a
// snapshot taken at creation and never change afterwards.
type Order struct {
	shared.BaseAggregateRoot
	CustomerUserID     uint
	BusinessUserID     uint
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              decimal.Decimal
	Features           []string
	OfferType          offer.OfferType
	Status             Status
}

// NewOrder snapshots the detail into a new in-progress order
func NewOrder(customerUserID, businessUserID uint, detail *offer.OfferDetail) *Order {
	features := make([]string, len(detail.Features))
	copy(features, detail.Features)
	return &Order{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		CustomerUserID:     customerUserID,
		BusinessUserID:     businessUserID,
		Title:              detail.Title,
		Revisions:          detail.Revisions,
		DeliveryTimeInDays: detail.DeliveryTimeInDays,
		Price:              detail.Price,
		Features:           features,
		OfferType:          detail.OfferType,
		Status:             StatusInProgress,
	}
}

// ChangeStatus sets a new status. Any transition between known states is allowed.
func (o *Order) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewFieldError("status", fmt.Sprintf("\"%s\" is not a valid choice.", status))
	}
	o.Status = status
	o.Touch()
	return nil
}

// IsParticipant reports whether userID is the customer or the business of the order
func (o *Order) IsParticipant(userID uint) bool {
	return o.CustomerUserID == userID || o.BusinessUserID == userID
}
