package models

import (
	"github.com/coderr/backend/internal/domain/offer"
	"github.com/coderr/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	BaseModel
	CustomerUserID     uint            `gorm:"not null;index"`
	BusinessUserID     uint            `gorm:"not null;index:idx_orders_business_status"`
	Title              string          `gorm:"type:varchar(255);not null"`
	Revisions          int             `gorm:"not null;default:0"`
	DeliveryTimeInDays int             `gorm:"not null"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Features           []string        `gorm:"type:text;serializer:json;not null"`
	OfferType          offer.OfferType `gorm:"type:varchar(10);not null"`
	Status             order.Status    `gorm:"type:varchar(20);not null;default:'in_progress';index:idx_orders_business_status"`
	Customer           *UserModel      `gorm:"foreignKey:CustomerUserID;constraint:OnDelete:CASCADE"`
	Business           *UserModel      `gorm:"foreignKey:BusinessUserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	features := m.Features
	if features == nil {
		features = []string{}
	}
	return &order.Order{
		BaseAggregateRoot:  aggregateRoot(m.BaseModel),
		CustomerUserID:     m.CustomerUserID,
		BusinessUserID:     m.BusinessUserID,
		Title:              m.Title,
		Revisions:          m.Revisions,
		DeliveryTimeInDays: m.DeliveryTimeInDays,
		Price:              m.Price,
		Features:           features,
		OfferType:          m.OfferType,
		Status:             m.Status,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		CustomerUserID:     o.CustomerUserID,
		BusinessUserID:     o.BusinessUserID,
		Title:              o.Title,
		Revisions:          o.Revisions,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Price:              o.Price,
		Features:           o.Features,
		OfferType:          o.OfferType,
		Status:             o.Status,
	}
	if m.Features == nil {
		m.Features = []string{}
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}
