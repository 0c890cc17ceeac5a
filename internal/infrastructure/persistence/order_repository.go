package persistence

import (
	"context"
	"errors"

	"github.com/coderr/backend/internal/domain/order"
	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return err
	}
	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// UpdateStatus persists the status and updated_at of an order
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"status":     o.Status,
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an order by ID
func (r *GormOrderRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByParticipant returns orders where userID is customer or business, newest first
func (r *GormOrderRepository) FindByParticipant(ctx context.Context, userID uint) ([]*order.Order, error) {
	var orderModels []*models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("customer_user_id = ? OR business_user_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = model.ToDomain()
	}
	return orders, nil
}

// CountByBusinessAndStatus counts a business user's orders in the given status
func (r *GormOrderRepository) CountByBusinessAndStatus(ctx context.Context, businessUserID uint, status order.Status) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("business_user_id = ? AND status = ?", businessUserID, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
