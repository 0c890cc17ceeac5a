package offer

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/coderr/backend/internal/application/media"
	"github.com/coderr/backend/internal/domain/identity"
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrInvalidPage is returned for a page past the last one
var ErrInvalidPage = shared.NewDomainError("NOT_FOUND", "Invalid page.")

// Pagination holds the page size limits of the offer list
type Pagination struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultPagination is used when no limits are configured
var DefaultPagination = Pagination{DefaultPageSize: 6, MaxPageSize: 3}

// resolve returns the effective page size for a request
func (p Pagination) resolve(requested *int) int {
	size := p.DefaultPageSize
	if size <= 0 {
		size = DefaultPagination.DefaultPageSize
	}
	if requested != nil && *requested > 0 {
		size = *requested
		if p.MaxPageSize > 0 && size > p.MaxPageSize {
			size = p.MaxPageSize
		}
	}
	return size
}

// Service handles offer-related business operations
type Service struct {
	offerRepo      offer.OfferRepository
	userRepo       identity.UserRepository
	storage        media.ObjectStorage
	pagination     Pagination
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new offer service
func NewService(
	offerRepo offer.OfferRepository,
	userRepo identity.UserRepository,
	storage media.ObjectStorage,
	pagination Pagination,
	logger *zap.Logger,
) *Service {
	return &Service{
		offerRepo:      offerRepo,
		userRepo:       userRepo,
		storage:        storage,
		pagination:     pagination,
		eventPublisher: shared.NoopEventPublisher{},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for offer events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	if publisher != nil {
		s.eventPublisher = publisher
	}
}

// List returns one page of offers matching q
func (s *Service) List(ctx context.Context, q ListQuery) (page shared.Paginated[OfferListItem], err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer", "list")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	number := max(q.Page, 1)
	size := s.pagination.resolve(q.PageSize)
	filter := offer.ListFilter{
		CreatorID:       q.CreatorID,
		MinPrice:        q.MinPrice,
		MaxDeliveryTime: q.MaxDeliveryTime,
		SearchTerms:     splitSearchTerms(q.Search),
		Ordering:        shared.ParseOrdering(q.Ordering, offer.SortableFields, offer.DefaultOrdering),
		Offset:          (number - 1) * size,
		Limit:           size,
	}

	rows, total, err := s.offerRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list offers", zap.Error(err))
		return page, err
	}
	// the first page exists even when empty
	if number > 1 && int64(filter.Offset) >= total {
		return page, ErrInvalidPage
	}

	items := make([]OfferListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, OfferListItem{
			OfferView: toOfferView(row.Offer, s.objectURL(ctx, row.Offer.Image), relativeDetailURL),
			UserDetails: UserDetails{
				FirstName: row.Owner.FirstName,
				LastName:  row.Owner.LastName,
				Username:  row.Owner.Username,
			},
		})
	}
	return shared.NewPaginated(items, total, number, size), nil
}

// Get returns a single offer. Detail links are absolute below apiBase,
// e.g. "http://localhost:8000".
func (s *Service) Get(ctx context.Context, id uint, apiBase string) (*OfferView, error) {
	o, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	base := strings.TrimRight(apiBase, "/")
	view := toOfferView(o, s.objectURL(ctx, o.Image), func(detailID uint) string {
		return fmt.Sprintf("%s/api/offerdetails/%d/", base, detailID)
	})
	return &view, nil
}

// GetDetail returns a single offer detail
func (s *Service) GetDetail(ctx context.Context, id uint) (*DetailResponse, error) {
	d, err := s.offerRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDetailResponse(d)
	return &resp, nil
}

// Create stores a new offer of a business user together with its three details
func (s *Service) Create(ctx context.Context, actorID uint, req CreateOfferRequest) (resp *OfferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer", "create",
		attribute.Int64(telemetry.SpanAttrUserID, int64(actorID)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if _, err := identity.RequireProfileType(ctx, s.userRepo, actorID, identity.ProfileTypeBusiness); err != nil {
		return nil, err
	}

	o, err := offer.NewOffer(actorID, req.Title, req.Description, nil, toDetailInputs(req.Details))
	if err != nil {
		return nil, err
	}
	if err := s.offerRepo.Create(ctx, o); err != nil {
		s.logger.Error("Failed to create offer", zap.Uint("user_id", actorID), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int64(telemetry.SpanAttrOfferID, int64(o.ID)))

	s.publish(ctx, o.ID, offer.NewOfferCreatedEvent(o))
	s.logger.Info("Offer created", zap.Uint("offer_id", o.ID), zap.Uint("user_id", actorID))
	return toOfferResponse(o, nil), nil
}

// Update applies a partial update. Only the owner may edit an offer.
func (s *Service) Update(ctx context.Context, actorID, id uint, req PatchOfferRequest) (*OfferResponse, error) {
	return s.Patch(ctx, actorID, id, func(dst *PatchOfferRequest) error {
		*dst = req
		return nil
	})
}

// Patch is Update with the body decoded by decode once ownership is
// established, so a caller who may not edit the offer never sees body errors.
func (s *Service) Patch(ctx context.Context, actorID, id uint, decode func(*PatchOfferRequest) error) (resp *OfferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer", "update",
		attribute.Int64(telemetry.SpanAttrUserID, int64(actorID)),
		attribute.Int64(telemetry.SpanAttrOfferID, int64(id)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.findOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	var req PatchOfferRequest
	if err := decode(&req); err != nil {
		return nil, err
	}
	replaced, err := o.Apply(toPatch(req))
	if err != nil {
		return nil, err
	}
	if err := s.offerRepo.Save(ctx, o); err != nil {
		s.logger.Error("Failed to save offer", zap.Uint("offer_id", id), zap.Error(err))
		return nil, err
	}
	if replaced != nil {
		s.removeObject(ctx, *replaced)
	}

	s.publish(ctx, o.ID, offer.NewOfferUpdatedEvent(o))
	return toOfferResponse(o, s.objectURL(ctx, o.Image)), nil
}

// UploadImage stores file as the offer image and removes the previous one
func (s *Service) UploadImage(ctx context.Context, actorID, id uint, file media.File) (resp *OfferResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer", "upload_image",
		attribute.Int64(telemetry.SpanAttrOfferID, int64(id)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.findOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := file.Validate("image", true); err != nil {
		return nil, err
	}

	key := media.NewKey(media.OfferImagePrefix, o.ID, file.Filename)
	if err := s.storage.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		s.logger.Error("Failed to upload offer image", zap.Uint("offer_id", id), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to store image")
	}
	previous := o.SetImage(key)
	if err := s.offerRepo.Save(ctx, o); err != nil {
		s.logger.Error("Failed to save offer image", zap.Uint("offer_id", id), zap.Error(err))
		s.removeObject(ctx, key)
		return nil, err
	}
	if previous != nil && *previous != key {
		s.removeObject(ctx, *previous)
	}

	s.publish(ctx, o.ID, offer.NewOfferUpdatedEvent(o))
	return toOfferResponse(o, s.objectURL(ctx, o.Image)), nil
}

// Delete removes an offer with its details and image. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, actorID, id uint) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "offer", "delete",
		attribute.Int64(telemetry.SpanAttrOfferID, int64(id)))
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	o, err := s.findOwned(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := s.offerRepo.Delete(ctx, o.ID); err != nil {
		s.logger.Error("Failed to delete offer", zap.Uint("offer_id", id), zap.Error(err))
		return err
	}
	if o.Image != nil {
		s.removeObject(ctx, *o.Image)
	}

	s.publish(ctx, o.ID, offer.NewOfferDeletedEvent(o))
	s.logger.Info("Offer deleted", zap.Uint("offer_id", id), zap.Uint("user_id", actorID))
	return nil
}

// findOwned loads the offer; 404 takes precedence over 403
func (s *Service) findOwned(ctx context.Context, actorID, id uint) (*offer.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(actorID) {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

func (s *Service) objectURL(ctx context.Context, key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	url, err := s.storage.URL(ctx, *key)
	if err != nil {
		s.logger.Warn("Failed to resolve image URL", zap.String("key", *key), zap.Error(err))
		return nil
	}
	return &url
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, offerID uint, event shared.DomainEvent) {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish offer event",
			zap.String("event_type", event.EventType()),
			zap.Uint("offer_id", offerID),
			zap.Error(err))
	}
}

func relativeDetailURL(id uint) string {
	return fmt.Sprintf("/offerdetails/%d/", id)
}

// splitSearchTerms splits on whitespace and commas
func splitSearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}
