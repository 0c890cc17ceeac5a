// Package stats serves the aggregated platform figures shown on the landing page.
package stats

import (
	"context"
	"strconv"
	"time"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/review"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// BaseInfoCacheKey is the cache key of the base-info payload
const BaseInfoCacheKey = "stats:base_info"

// DefaultTTL is used when no TTL is configured
const DefaultTTL = 60 * time.Second

// BaseInfo is the body of GET /api/base-info/
type BaseInfo struct {
	ReviewCount          int64   `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int64   `json:"business_profile_count"`
	OfferCount           int64   `json:"offer_count"`
}

// Service computes and caches BaseInfo
type Service struct {
	userRepo   identity.UserRepository
	offerRepo  offer.OfferRepository
	reviewRepo review.ReviewRepository
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// NewService creates a new stats service. A nil cache disables caching.
func NewService(
	userRepo identity.UserRepository,
	offerRepo offer.OfferRepository,
	reviewRepo review.ReviewRepository,
	c cache.Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		userRepo:   userRepo,
		offerRepo:  offerRepo,
		reviewRepo: reviewRepo,
		cache:      c,
		ttl:        ttl,
		logger:     logger,
	}
}

// BaseInfo returns the cached figures, computing them on a miss.
// Cache failures degrade to computing from the database.
func (s *Service) BaseInfo(ctx context.Context) (*BaseInfo, error) {
	if s.cache != nil {
		var cached BaseInfo
		hit, err := s.cache.Get(ctx, BaseInfoCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Failed to read base info from cache", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	info, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, BaseInfoCacheKey, info, s.ttl); err != nil {
			s.logger.Warn("Failed to cache base info", zap.Error(err))
		}
	}
	return info, nil
}

// Invalidate drops the cached figures
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, BaseInfoCacheKey)
}

func (s *Service) compute(ctx context.Context) (*BaseInfo, error) {
	summary, err := s.reviewRepo.Summarize(ctx)
	if err != nil {
		s.logger.Error("Failed to summarize reviews", zap.Error(err))
		return nil, err
	}
	businessCount, err := s.userRepo.CountByProfileType(ctx, identity.ProfileTypeBusiness)
	if err != nil {
		s.logger.Error("Failed to count business profiles", zap.Error(err))
		return nil, err
	}
	offerCount, err := s.offerRepo.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count offers", zap.Error(err))
		return nil, err
	}
	return &BaseInfo{
		ReviewCount:          summary.Count,
		AverageRating:        roundOneDecimal(summary.AverageRating),
		BusinessProfileCount: businessCount,
		OfferCount:           offerCount,
	}, nil
}

// roundOneDecimal rounds the exact binary value, ties to even
func roundOneDecimal(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

// InvalidationHandler drops the cached figures whenever an event changes them
type InvalidationHandler struct {
	service *Service
	logger  *zap.Logger
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)

// NewInvalidationHandler creates a handler to subscribe on the event bus
func NewInvalidationHandler(service *Service, logger *zap.Logger) *InvalidationHandler {
	return &InvalidationHandler{service: service, logger: logger}
}

// EventTypes lists the events that change BaseInfo
func (h *InvalidationHandler) EventTypes() []string {
	return []string{
		review.EventTypeReviewCreated,
		review.EventTypeReviewUpdated,
		review.EventTypeReviewDeleted,
		offer.EventTypeOfferCreated,
		offer.EventTypeOfferDeleted,
		identity.EventTypeUserRegistered,
	}
}

// Handle invalidates the cache
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.service.Invalidate(ctx); err != nil {
		h.logger.Warn("Failed to invalidate base info cache",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	h.logger.Debug("Base info cache invalidated", zap.String("event_type", event.EventType()))
	return nil
}
