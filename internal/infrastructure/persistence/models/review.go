package models

import "github.com/coderr/backend/internal/domain/review"

// ReviewModel is the persistence model for the Review aggregate.
// A reviewer may rate a business user only once.
type ReviewModel struct {
	BaseModel
	BusinessUserID uint       `gorm:"not null;uniqueIndex:idx_reviews_business_reviewer"`
	ReviewerID     uint       `gorm:"not null;uniqueIndex:idx_reviews_business_reviewer;index"`
	Rating         int        `gorm:"type:smallint;not null"`
	Description    string     `gorm:"type:text;not null;default:''"`
	BusinessUser   *UserModel `gorm:"foreignKey:BusinessUserID;constraint:OnDelete:CASCADE"`
	Reviewer       *UserModel `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model to a domain Review
func (m *ReviewModel) ToDomain() *review.Review {
	return &review.Review{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		BusinessUserID:    m.BusinessUserID,
		ReviewerID:        m.ReviewerID,
		Rating:            m.Rating,
		Description:       m.Description,
	}
}

// ReviewModelFromDomain creates a persistence model from a domain Review
func ReviewModelFromDomain(r *review.Review) *ReviewModel {
	m := &ReviewModel{
		BusinessUserID: r.BusinessUserID,
		ReviewerID:     r.ReviewerID,
		Rating:         r.Rating,
		Description:    r.Description,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// AllModels lists every model in dependency order, for AutoMigrate in tests and sqlite dev mode
func AllModels() []any {
	return []any{
		&UserModel{},
		&ProfileModel{},
		&OfferModel{},
		&OfferDetailModel{},
		&OrderModel{},
		&ReviewModel{},
	}
}
