package order

import (
	"time"

	"github.com/coderr/backend/internal/domain/order"
)

// CreateOrderRequest is the body of POST /api/orders/
type CreateOrderRequest struct {
	OfferDetailID *uint `json:"offer_detail_id" binding:"required"`
}

// UpdateStatusRequest is the body of PATCH /api/orders/{id}/.
// UnknownKeys lists body keys other than status; the handler fills it.
type UpdateStatusRequest struct {
	Status      *string  `json:"status"`
	UnknownKeys []string `json:"-"`
}

// OrderResponse is the representation of an order. UpdatedAt is omitted
// from the create response.
type OrderResponse struct {
	ID                 uint       `json:"id"`
	CustomerUser       uint       `json:"customer_user"`
	BusinessUser       uint       `json:"business_user"`
	Title              string     `json:"title"`
	Revisions          int        `json:"revisions"`
	DeliveryTimeInDays int        `json:"delivery_time_in_days"`
	Price              string     `json:"price"`
	Features           []string   `json:"features"`
	OfferType          string     `json:"offer_type"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// OrderCountResponse is returned by GET /api/order-count/{id}/
type OrderCountResponse struct {
	OrderCount int64 `json:"order_count"`
}

// CompletedOrderCountResponse is returned by GET /api/completed-order-count/{id}/
type CompletedOrderCountResponse struct {
	CompletedOrderCount int64 `json:"completed_order_count"`
}

// ToOrderResponse converts a domain order including updated_at
func ToOrderResponse(o *order.Order) OrderResponse {
	resp := toCreatedResponse(o)
	updated := o.UpdatedAt
	resp.UpdatedAt = &updated
	return resp
}

func toCreatedResponse(o *order.Order) OrderResponse {
	features := o.Features
	if features == nil {
		features = []string{}
	}
	return OrderResponse{
		ID:                 o.ID,
		CustomerUser:       o.CustomerUserID,
		BusinessUser:       o.BusinessUserID,
		Title:              o.Title,
		Revisions:          o.Revisions,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Price:              o.Price.StringFixed(2),
		Features:           features,
		OfferType:          string(o.OfferType),
		Status:             string(o.Status),
		CreatedAt:          o.CreatedAt,
	}
}

// ToOrderResponses converts a list of orders
func ToOrderResponses(orders []*order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}
