package telemetry

import (
	"context"
	"errors"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/order"
	"github.com/coderr/backend/internal/domain/review"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics component is built without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// MarketplaceMetrics counts marketplace activity. It is fed by the domain
// event bus so services stay free of metric calls.
type MarketplaceMetrics struct {
	logger *zap.Logger

	usersRegistered     *Counter
	offersCreated       *Counter
	offersDeleted       *Counter
	ordersPlaced        *Counter
	orderRevenue        *FloatCounter
	orderStatusChanges  *Counter
	reviewsCreated      *Counter
	reviewsDeleted      *Counter
	reviewRatingHistory *Histogram
}

// NewMarketplaceMetrics creates the instruments on meter
func NewMarketplaceMetrics(meter metric.Meter, logger *zap.Logger) (*MarketplaceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &MarketplaceMetrics{logger: logger}

	var err error
	counters := []struct {
		dst         **Counter
		name, descr string
		unit        string
	}{
		{&m.usersRegistered, "coderr_users_registered_total", "Registered users", "{users}"},
		{&m.offersCreated, "coderr_offers_created_total", "Offers created", "{offers}"},
		{&m.offersDeleted, "coderr_offers_deleted_total", "Offers deleted", "{offers}"},
		{&m.ordersPlaced, "coderr_orders_placed_total", "Orders placed", "{orders}"},
		{&m.orderStatusChanges, "coderr_order_status_changes_total", "Order status changes", "{changes}"},
		{&m.reviewsCreated, "coderr_reviews_created_total", "Reviews written", "{reviews}"},
		{&m.reviewsDeleted, "coderr_reviews_deleted_total", "Reviews deleted", "{reviews}"},
	}
	for _, c := range counters {
		if *c.dst, err = NewCounter(meter, c.name, c.descr, c.unit); err != nil {
			return nil, err
		}
	}

	if m.orderRevenue, err = NewFloatCounter(meter, "coderr_order_revenue_total", "Sum of ordered tier prices", "{currency}"); err != nil {
		return nil, err
	}
	m.reviewRatingHistory, err = NewHistogram(meter, HistogramOpts{
		Name:        "coderr_review_rating",
		Description: "Distribution of submitted ratings",
		Unit:        "{stars}",
		Boundaries:  []float64{1, 2, 3, 4, 5},
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *MarketplaceMetrics) EventTypes() []string {
	return []string{
		identity.EventTypeUserRegistered,
		offer.EventTypeOfferCreated,
		offer.EventTypeOfferDeleted,
		order.EventTypeOrderPlaced,
		order.EventTypeOrderStatusChanged,
		review.EventTypeReviewCreated,
		review.EventTypeReviewDeleted,
	}
}

// Handle implements shared.EventHandler
func (m *MarketplaceMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *identity.UserRegisteredEvent:
		m.usersRegistered.Inc(ctx, AttrProfileType.String(string(e.ProfileType)))
	case *offer.OfferCreatedEvent:
		m.offersCreated.Inc(ctx)
	case *offer.OfferDeletedEvent:
		m.offersDeleted.Inc(ctx)
	case *order.OrderPlacedEvent:
		m.ordersPlaced.Inc(ctx, AttrOfferType.String(e.OfferType))
		if price, err := decimal.NewFromString(e.Price); err == nil {
			m.orderRevenue.Add(ctx, price.InexactFloat64(), AttrOfferType.String(e.OfferType))
		} else {
			m.logger.Warn("Unparseable order price in event", zap.String("price", e.Price))
		}
	case *order.OrderStatusChangedEvent:
		m.orderStatusChanges.Inc(ctx, AttrOrderStatus.String(string(e.To)))
	case *review.ReviewEvent:
		switch e.EventType() {
		case review.EventTypeReviewCreated:
			m.reviewsCreated.Inc(ctx)
			m.reviewRatingHistory.Record(ctx, float64(e.Rating))
		case review.EventTypeReviewDeleted:
			m.reviewsDeleted.Inc(ctx)
		}
	}
	return nil
}

var _ shared.EventHandler = (*MarketplaceMetrics)(nil)
