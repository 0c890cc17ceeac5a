package order

import "github.com/coderr/backend/internal/domain/shared"

// Aggregate type constant for Order
const AggregateTypeOrder = "Order"

// Order domain event types
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderDeleted       = "OrderDeleted"
)

// OrderPlacedEvent is published after a customer placed an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	CustomerUserID uint   `json:"customer_user_id"`
	BusinessUserID uint   `json:"business_user_id"`
	OfferType      string `json:"offer_type"`
	Price          string `json:"price"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, o.ID),
		CustomerUserID:  o.CustomerUserID,
		BusinessUserID:  o.BusinessUserID,
		OfferType:       string(o.OfferType),
		Price:           o.Price.StringFixed(2),
	}
}

// OrderStatusChangedEvent is published after the business user changed the status
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	BusinessUserID uint   `json:"business_user_id"`
	From           Status `json:"from"`
	To             Status `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		BusinessUserID:  o.BusinessUserID,
		From:            from,
		To:              o.Status,
	}
}

// OrderDeletedEvent is published after staff removed an order
type OrderDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(o *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDeleted, AggregateTypeOrder, o.ID),
	}
}
