package order

import "context"

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error

	// UpdateStatus persists the status and updated_at of an order
	UpdateStatus(ctx context.Context, order *Order) error

	Delete(ctx context.Context, id uint) error

	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByParticipant returns orders where userID is customer or business, newest first
	FindByParticipant(ctx context.Context, userID uint) ([]*Order, error)

	// CountByBusinessAndStatus counts a business user's orders in the given status
	CountByBusinessAndStatus(ctx context.Context, businessUserID uint, status Status) (int64, error)
}
