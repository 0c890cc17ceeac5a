package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// offer list columns the ordering may reference
var offerOrderColumns = map[string]string{
	offer.SortUpdatedAt: "offers.updated_at",
	offer.SortMinPrice:  "min_price",
}

// GormOfferRepository implements offer.OfferRepository using GORM
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// Create inserts the offer and its details in one transaction
func (r *GormOfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	model := models.OfferModelFromDomain(o)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		for _, d := range model.Details {
			d.OfferID = model.ID
		}
		return tx.Create(model.Details).Error
	})
	if err != nil {
		return err
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i, d := range model.Details {
		o.Details[i].ID = d.ID
		o.Details[i].OfferID = model.ID
	}
	return nil
}

// Save updates the offer row and all its details in one transaction
func (r *GormOfferRepository) Save(ctx context.Context, o *offer.Offer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OfferModel{}).
			Where("id = ?", o.ID).
			Updates(map[string]any{
				"title":       o.Title,
				"image":       o.Image,
				"description": o.Description,
				"updated_at":  o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		for _, d := range o.Details {
			dm := models.OfferDetailModelFromDomain(d)
			if err := tx.Model(dm).
				Where("offer_id = ?", o.ID).
				Select("title", "revisions", "delivery_time_in_days", "price", "features").
				Updates(dm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the offer together with its details
func (r *GormOfferRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferDetailModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OfferModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID loads an offer with its details
func (r *GormOfferRepository) FindByID(ctx context.Context, id uint) (*offer.Offer, error) {
	var model models.OfferModel
	if err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("offer_details.id ASC") }).
		First(&model, "offers.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDetailByID loads a single detail
func (r *GormOfferRepository) FindDetailByID(ctx context.Context, id uint) (*offer.OfferDetail, error) {
	var model models.OfferDetailModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// offerListRow is one row of the annotated offer list query
type offerListRow struct {
	models.OfferModel
	OwnerFirstName string
	OwnerLastName  string
	OwnerUsername  string
}

// List returns a filtered, ordered page and the total match count.
// min_price and min_delivery_time are aggregated over the offer's details.
func (r *GormOfferRepository) List(ctx context.Context, filter offer.ListFilter) ([]offer.ListItem, int64, error) {
	db := r.db.WithContext(ctx)
	aggregate := db.Model(&models.OfferDetailModel{}).
		Select("offer_id, MIN(price) AS min_price, MIN(delivery_time_in_days) AS min_delivery_time").
		Group("offer_id")

	query := db.Table("offers").
		Joins("LEFT JOIN (?) AS agg ON agg.offer_id = offers.id", aggregate).
		Joins("JOIN users ON users.id = offers.user_id")
	query = applyOfferFilter(query, filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []offer.ListItem{}, 0, nil
	}

	query = query.Select("offers.*, " +
		"COALESCE(agg.min_price, 0) AS min_price, " +
		"users.first_name AS owner_first_name, users.last_name AS owner_last_name, users.username AS owner_username")
	query = applyOfferOrdering(query, filter.Ordering)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []offerListRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	details, err := r.detailsFor(ctx, rows)
	if err != nil {
		return nil, 0, err
	}

	items := make([]offer.ListItem, len(rows))
	for i := range rows {
		rows[i].Details = details[rows[i].ID]
		items[i] = offer.ListItem{
			Offer: rows[i].OfferModel.ToDomain(),
			Owner: offer.Owner{
				FirstName: rows[i].OwnerFirstName,
				LastName:  rows[i].OwnerLastName,
				Username:  rows[i].OwnerUsername,
			},
		}
	}
	return items, total, nil
}

func (r *GormOfferRepository) detailsFor(ctx context.Context, rows []offerListRow) (map[uint][]*models.OfferDetailModel, error) {
	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var detailModels []*models.OfferDetailModel
	if err := r.db.WithContext(ctx).
		Where("offer_id IN ?", ids).
		Order("id ASC").
		Find(&detailModels).Error; err != nil {
		return nil, err
	}
	byOffer := make(map[uint][]*models.OfferDetailModel, len(rows))
	for _, d := range detailModels {
		byOffer[d.OfferID] = append(byOffer[d.OfferID], d)
	}
	return byOffer, nil
}

func applyOfferFilter(query *gorm.DB, filter offer.ListFilter) *gorm.DB {
	if filter.CreatorID != nil {
		query = query.Where("offers.user_id = ?", *filter.CreatorID)
	}
	if filter.MinPrice != nil {
		// bound as a float so sqlite compares numerically
		query = query.Where("COALESCE(agg.min_price, 0) >= ?", filter.MinPrice.InexactFloat64())
	}
	if filter.MaxDeliveryTime != nil {
		query = query.Where("agg.min_delivery_time <= ?", *filter.MaxDeliveryTime)
	}
	for _, term := range filter.SearchTerms {
		pattern := containsPattern(term)
		query = query.Where(
			`(LOWER(offers.title) LIKE ? ESCAPE '\' OR LOWER(offers.description) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	return query
}

func applyOfferOrdering(query *gorm.DB, ordering []shared.SortField) *gorm.DB {
	if len(ordering) == 0 {
		ordering = []shared.SortField{offer.DefaultOrdering}
	}
	for _, sf := range ordering {
		column, ok := offerOrderColumns[sf.Field]
		if !ok {
			continue
		}
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: sf.Desc})
	}
	// stable pages when the sort key ties
	return query.Order("offers.id DESC")
}

// containsPattern builds a case-insensitive LIKE pattern with wildcards escaped
func containsPattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}

// Count returns the number of offers
func (r *GormOfferRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OfferModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ offer.OfferRepository = (*GormOfferRepository)(nil)
