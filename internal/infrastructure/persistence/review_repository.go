package persistence

import (
	"context"
	"errors"

	"github.com/coderr/backend/internal/domain/review"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var reviewOrderColumns = map[string]string{
	review.SortUpdatedAt: "updated_at",
	review.SortRating:    "rating",
}

// GormReviewRepository implements review.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a review. The unique (business_user_id, reviewer_id) index
// catches a concurrent duplicate that slipped past the service check.
func (r *GormReviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := models.ReviewModelFromDomain(rv)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return review.ErrAlreadyReviewed
		}
		return err
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

// Save persists rating, description and updated_at
func (r *GormReviewRepository) Save(ctx context.Context, rv *review.Review) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("id = ?", rv.ID).
		Updates(map[string]any{
			"rating":      rv.Rating,
			"description": rv.Description,
			"updated_at":  rv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a review by ID
func (r *GormReviewRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ReviewModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a review by ID
func (r *GormReviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model models.ReviewModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns all reviews matching the filter in the requested order
func (r *GormReviewRepository) List(ctx context.Context, filter review.ListFilter) ([]*review.Review, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{})
	if filter.BusinessUserID != nil {
		query = query.Where("business_user_id = ?", *filter.BusinessUserID)
	}
	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = []shared.SortField{review.DefaultOrdering}
	}
	for _, sf := range ordering {
		if column, ok := reviewOrderColumns[sf.Field]; ok {
			query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sf.Desc})
		}
	}
	query = query.Order("id DESC")

	var reviewModels []*models.ReviewModel
	if err := query.Find(&reviewModels).Error; err != nil {
		return nil, err
	}

	reviews := make([]*review.Review, len(reviewModels))
	for i, model := range reviewModels {
		reviews[i] = model.ToDomain()
	}
	return reviews, nil
}

// ExistsByPair checks whether reviewerID already rated businessUserID
func (r *GormReviewRepository) ExistsByPair(ctx context.Context, businessUserID, reviewerID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Where("business_user_id = ? AND reviewer_id = ?", businessUserID, reviewerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Summarize counts all reviews and averages their rating
func (r *GormReviewRepository) Summarize(ctx context.Context) (review.Summary, error) {
	var row struct {
		Count         int64
		AverageRating *float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewModel{}).
		Select("COUNT(*) AS count, AVG(rating) AS average_rating").
		Scan(&row).Error; err != nil {
		return review.Summary{}, err
	}

	summary := review.Summary{Count: row.Count}
	if row.AverageRating != nil {
		summary.AverageRating = *row.AverageRating
	}
	return summary, nil
}

var _ review.ReviewRepository = (*GormReviewRepository)(nil)
