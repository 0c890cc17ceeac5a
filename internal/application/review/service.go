package review

import (
	"context"
	"fmt"

	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/review"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnallowedFields is returned when a PATCH body carries keys that may not change
var ErrUnallowedFields = shared.NewDomainError("INVALID_INPUT", "Unallowed fields in request.")

// Service handles review-related business operations
type Service struct {
	reviewRepo     review.ReviewRepository
	userRepo       identity.UserRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new review service
func NewService(reviewRepo review.ReviewRepository, userRepo identity.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		reviewRepo:     reviewRepo,
		userRepo:       userRepo,
		eventPublisher: shared.NoopEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for review events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// List returns reviews matching q
func (s *Service) List(ctx context.Context, q ListQuery) ([]ReviewResponse, error) {
	reviews, err := s.reviewRepo.List(ctx, review.ListFilter{
		BusinessUserID: q.BusinessUserID,
		ReviewerID:     q.ReviewerID,
		Ordering:       shared.ParseOrdering(q.Ordering, review.SortableFields, review.DefaultOrdering),
	})
	if err != nil {
		s.logger.Error("Failed to list reviews", zap.Error(err))
		return nil, err
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ToReviewResponse(r))
	}
	return out, nil
}

// Create stores a customer's review of a business user
func (s *Service) Create(ctx context.Context, actorID uint, req CreateReviewRequest) (resp *ReviewResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "create",
		attribute.Int64(telemetry.SpanAttrUserID, int64(actorID)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if _, err := identity.RequireProfileType(ctx, s.userRepo, actorID, identity.ProfileTypeCustomer); err != nil {
		return nil, err
	}
	if req.BusinessUser == nil {
		return nil, shared.NewFieldError("business_user", "This field is required.")
	}
	if req.Rating == nil {
		return nil, shared.NewFieldError("rating", "This field is required.")
	}
	if err := s.checkBusinessUser(ctx, *req.BusinessUser); err != nil {
		return nil, err
	}

	r, err := review.NewReview(*req.BusinessUser, actorID, *req.Rating, req.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.reviewRepo.ExistsByPair(ctx, r.BusinessUserID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, review.ErrAlreadyReviewed
	}
	// a concurrent insert of the same pair is reported by the unique index
	if err := s.reviewRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64(telemetry.SpanAttrReviewID, int64(r.ID)))

	s.publish(ctx, r.ID, review.NewReviewCreatedEvent(r))
	s.logger.Info("Review created",
		zap.Uint("review_id", r.ID),
		zap.Uint("business_user_id", r.BusinessUserID),
		zap.Int("rating", r.Rating),
	)
	out := ToReviewResponse(r)
	return &out, nil
}

// Update changes rating and description. Only the reviewer may edit.
func (s *Service) Update(ctx context.Context, actorID, id uint, req UpdateReviewRequest) (*ReviewResponse, error) {
	return s.Patch(ctx, actorID, id, req.UnknownKeys, func(dst *UpdateReviewRequest) error {
		*dst = req
		return nil
	})
}

// Patch is Update with the body keys checked first and the body decoded by
// decode only after the reviewer is confirmed.
func (s *Service) Patch(ctx context.Context, actorID, id uint, unknownKeys []string, decode func(*UpdateReviewRequest) error) (resp *ReviewResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "update",
		attribute.Int64(telemetry.SpanAttrReviewID, int64(id)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if len(unknownKeys) > 0 {
		return nil, ErrUnallowedFields
	}
	r, err := s.findOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	var req UpdateReviewRequest
	if err := decode(&req); err != nil {
		return nil, err
	}
	if err := r.Update(req.Rating, req.Description); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		s.logger.Error("Failed to save review", zap.Uint("review_id", id), zap.Error(err))
		return nil, err
	}

	s.publish(ctx, r.ID, review.NewReviewUpdatedEvent(r))
	out := ToReviewResponse(r)
	return &out, nil
}

// Delete removes a review. Only the reviewer may delete.
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	r, err := s.findOwned(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, r.ID); err != nil {
		s.logger.Error("Failed to delete review", zap.Uint("review_id", id), zap.Error(err))
		return err
	}
	s.publish(ctx, r.ID, review.NewReviewDeletedEvent(r))
	return nil
}

// checkBusinessUser reports invalid targets as a field error on business_user
func (s *Service) checkBusinessUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.NewFieldError("business_user",
				fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", userID))
		}
		return err
	}
	if !user.IsBusiness() {
		return shared.NewFieldError("business_user", "business_user must be a business user.")
	}
	return nil
}

func (s *Service) findOwned(ctx context.Context, actorID, id uint) (*review.Review, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsWrittenBy(actorID) {
		return nil, shared.ErrForbidden
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, reviewID uint, event shared.DomainEvent) {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish review event",
			zap.String("event_type", event.EventType()),
			zap.Uint("review_id", reviewID),
			zap.Error(err))
	}
}
