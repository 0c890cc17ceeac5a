package order

import (
	"context"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/order"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnallowedFields is returned when a PATCH body carries keys that may not change
var ErrUnallowedFields = shared.NewDomainError("INVALID_INPUT", "Unallowed fields in request.")

// Service handles order-related business operations
type Service struct {
	orderRepo      order.OrderRepository
	offerRepo      offer.OfferRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new order service
func NewService(
	orderRepo order.OrderRepository,
	offerRepo offer.OfferRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		orderRepo:      orderRepo,
		offerRepo:      offerRepo,
		userRepo:       userRepo,
		eventPublisher: shared.NoopEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for order events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// List returns the orders where userID is customer or business, newest first
func (s *Service) List(ctx context.Context, userID uint) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByParticipant(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Uint("user_id", userID), zap.Error(err))
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// Get returns an order visible to its participants and staff
func (s *Service) Get(ctx context.Context, actorID, id uint) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsParticipant(actorID) {
		actor, err := s.userRepo.FindByID(ctx, actorID)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if actor == nil || !actor.IsStaff {
			return nil, shared.ErrNotFound
		}
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// Create places an order for a customer by snapshotting the offer detail
func (s *Service) Create(ctx context.Context, actorID uint, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		attribute.Int64(telemetry.SpanAttrUserID, int64(actorID)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if _, err := identity.RequireProfileType(ctx, s.userRepo, actorID, identity.ProfileTypeCustomer); err != nil {
		return nil, err
	}
	if req.OfferDetailID == nil {
		return nil, shared.NewFieldError("offer_detail_id", "This field is required.")
	}

	detail, err := s.offerRepo.FindDetailByID(ctx, *req.OfferDetailID)
	if err != nil {
		return nil, err
	}
	parent, err := s.offerRepo.FindByID(ctx, detail.OfferID)
	if err != nil {
		return nil, err
	}

	o := order.NewOrder(actorID, parent.UserID, detail)
	if err := s.orderRepo.Create(ctx, o); err != nil {
		s.logger.Error("Failed to create order", zap.Uint("user_id", actorID), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int64(telemetry.SpanAttrOrderID, int64(o.ID)))

	s.publish(ctx, o.ID, order.NewOrderPlacedEvent(o))
	s.logger.Info("Order placed",
		zap.Uint("order_id", o.ID),
		zap.Uint("customer_user_id", o.CustomerUserID),
		zap.Uint("business_user_id", o.BusinessUserID),
	)
	created := toCreatedResponse(o)
	return &created, nil
}

// UpdateStatus changes the status of an order. Only the order's business user may do so.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id uint, req UpdateStatusRequest) (*OrderResponse, error) {
	return s.PatchStatus(ctx, actorID, id, req.UnknownKeys, func(dst *UpdateStatusRequest) error {
		*dst = req
		return nil
	})
}

// PatchStatus is UpdateStatus with the body decoded by decode only after the
// caller is confirmed as the order's business user.
func (s *Service) PatchStatus(ctx context.Context, actorID, id uint, unknownKeys []string, decode func(*UpdateStatusRequest) error) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status",
		attribute.Int64(telemetry.SpanAttrUserID, int64(actorID)),
		attribute.Int64(telemetry.SpanAttrOrderID, int64(id)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if _, err := identity.RequireProfileType(ctx, s.userRepo, actorID, identity.ProfileTypeBusiness); err != nil {
		return nil, err
	}
	if len(unknownKeys) > 0 {
		return nil, ErrUnallowedFields
	}

	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.BusinessUserID != actorID {
		return nil, shared.ErrForbidden
	}
	var req UpdateStatusRequest
	if err := decode(&req); err != nil {
		return nil, err
	}
	if req.Status == nil {
		// an empty patch leaves the order unchanged
		current := ToOrderResponse(o)
		return &current, nil
	}

	status, err := order.ParseStatus(*req.Status)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := o.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, o); err != nil {
		s.logger.Error("Failed to update order status", zap.Uint("order_id", id), zap.Error(err))
		return nil, err
	}

	if from != status {
		s.publish(ctx, o.ID, order.NewOrderStatusChangedEvent(o, from))
	}
	updated := ToOrderResponse(o)
	return &updated, nil
}

// Delete removes an order. Only staff may delete orders.
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.ErrForbidden
		}
		return err
	}
	if !actor.IsStaff {
		return shared.ErrForbidden
	}

	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, o.ID); err != nil {
		s.logger.Error("Failed to delete order", zap.Uint("order_id", id), zap.Error(err))
		return err
	}
	s.publish(ctx, o.ID, order.NewOrderDeletedEvent(o))
	s.logger.Info("Order deleted", zap.Uint("order_id", id), zap.Uint("staff_user_id", actorID))
	return nil
}

// CountInProgress returns the number of in-progress orders of a business user
func (s *Service) CountInProgress(ctx context.Context, businessUserID uint) (*OrderCountResponse, error) {
	n, err := s.countByStatus(ctx, businessUserID, order.StatusInProgress)
	if err != nil {
		return nil, err
	}
	return &OrderCountResponse{OrderCount: n}, nil
}

// CountCompleted returns the number of completed orders of a business user
func (s *Service) CountCompleted(ctx context.Context, businessUserID uint) (*CompletedOrderCountResponse, error) {
	n, err := s.countByStatus(ctx, businessUserID, order.StatusCompleted)
	if err != nil {
		return nil, err
	}
	return &CompletedOrderCountResponse{CompletedOrderCount: n}, nil
}

// countByStatus answers 404 unless businessUserID is an existing business user
func (s *Service) countByStatus(ctx context.Context, businessUserID uint, status order.Status) (int64, error) {
	user, err := s.userRepo.FindByID(ctx, businessUserID)
	if err != nil {
		return 0, err
	}
	if !user.IsBusiness() {
		return 0, shared.ErrNotFound
	}
	return s.orderRepo.CountByBusinessAndStatus(ctx, businessUserID, status)
}

func (s *Service) publish(ctx context.Context, orderID uint, event shared.DomainEvent) {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", event.EventType()),
			zap.Uint("order_id", orderID),
			zap.Error(err))
	}
}
