package models

import (
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/shopspring/decimal"
)

// OfferModel is the persistence model for the Offer aggregate
type OfferModel struct {
	BaseModel
	UserID      uint                `gorm:"not null;index"`
	Title       string              `gorm:"type:varchar(255);not null"`
	Image       *string             `gorm:"type:varchar(255)"`
	Description string              `gorm:"type:text;not null;default:''"`
	Details     []*OfferDetailModel `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	User        *UserModel          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OfferModel) TableName() string {
	return "offers"
}

// ToDomain converts the persistence model to a domain Offer with the loaded details
func (m *OfferModel) ToDomain() *offer.Offer {
	o := &offer.Offer{
		BaseAggregateRoot: aggregateRoot(m.BaseModel),
		UserID:            m.UserID,
		Title:             m.Title,
		Image:             m.Image,
		Description:       m.Description,
		Details:           make([]*offer.OfferDetail, 0, len(m.Details)),
	}
	for _, d := range m.Details {
		o.Details = append(o.Details, d.ToDomain())
	}
	return o
}

// FromDomain populates the model and its details from a domain Offer
func (m *OfferModel) FromDomain(o *offer.Offer) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.UserID = o.UserID
	m.Title = o.Title
	m.Image = o.Image
	m.Description = o.Description
	m.Details = make([]*OfferDetailModel, 0, len(o.Details))
	for _, d := range o.Details {
		m.Details = append(m.Details, OfferDetailModelFromDomain(d))
	}
}

// OfferModelFromDomain creates a new persistence model from a domain Offer
func OfferModelFromDomain(o *offer.Offer) *OfferModel {
	m := &OfferModel{}
	m.FromDomain(o)
	return m
}

// OfferDetailModel is the persistence model for an OfferDetail
type OfferDetailModel struct {
	ID                 uint            `gorm:"primaryKey;autoIncrement"`
	OfferID            uint            `gorm:"not null;uniqueIndex:idx_offer_details_offer_type"`
	Title              string          `gorm:"type:varchar(255);not null"`
	Revisions          int             `gorm:"not null;default:0"`
	DeliveryTimeInDays int             `gorm:"not null"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Features           []string        `gorm:"type:text;serializer:json;not null"`
	OfferType          offer.OfferType `gorm:"type:varchar(10);not null;uniqueIndex:idx_offer_details_offer_type"`
}

// TableName returns the table name for GORM
func (OfferDetailModel) TableName() string {
	return "offer_details"
}

// ToDomain converts the persistence model to a domain OfferDetail
func (m *OfferDetailModel) ToDomain() *offer.OfferDetail {
	features := m.Features
	if features == nil {
		features = []string{}
	}
	return &offer.OfferDetail{
		ID:                 m.ID,
		OfferID:            m.OfferID,
		Title:              m.Title,
		Revisions:          m.Revisions,
		DeliveryTimeInDays: m.DeliveryTimeInDays,
		Price:              m.Price,
		Features:           features,
		OfferType:          m.OfferType,
	}
}

// OfferDetailModelFromDomain creates a persistence model from a domain OfferDetail
func OfferDetailModelFromDomain(d *offer.OfferDetail) *OfferDetailModel {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return &OfferDetailModel{
		ID:                 d.ID,
		OfferID:            d.OfferID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          d.OfferType,
	}
}
