package offer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OfferType names one of the three pricing tiers
type OfferType string

const (
	OfferTypeBasic    OfferType = "basic"
	OfferTypeStandard OfferType = "standard"
	OfferTypePremium  OfferType = "premium"
)

// AllOfferTypes lists the tiers every offer must carry, cheapest first
var AllOfferTypes = []OfferType{OfferTypeBasic, OfferTypeStandard, OfferTypePremium}

// IsValid reports whether t is a known tier
func (t OfferType) IsValid() bool {
	switch t {
	case OfferTypeBasic, OfferTypeStandard, OfferTypePremium:
		return true
	}
	return false
}

const maxTitleLength = 255

// maxPrice is the exclusive upper bound of a decimal(7,2) column
var maxPrice = decimal.NewFromInt(100000)

// OfferDetail is a single priced tier of an offer
type OfferDetail struct {
	ID                 uint
	OfferID            uint
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              decimal.Decimal
	Features           []string
	OfferType          OfferType
}

// DetailInput carries the fields needed to create a detail
type DetailInput struct {
	Title              string
	Revisions          int
	DeliveryTimeInDays int
	Price              decimal.Decimal
	Features           []string
	OfferType          OfferType
}

// DetailPatch is a partial update addressed by OfferType. Nil fields are left untouched.
type DetailPatch struct {
	OfferType          OfferType
	Title              *string
	Revisions          *int
	DeliveryTimeInDays *int
	Price              *decimal.Decimal
	Features           *[]string
}

func newDetail(in DetailInput) (*OfferDetail, error) {
	if !in.OfferType.IsValid() {
		return nil, invalidCreateType(in.OfferType)
	}
	d := &OfferDetail{OfferType: in.OfferType, Features: []string{}}
	patch := DetailPatch{
		OfferType:          in.OfferType,
		Title:              &in.Title,
		Revisions:          &in.Revisions,
		DeliveryTimeInDays: &in.DeliveryTimeInDays,
		Price:              &in.Price,
	}
	if in.Features != nil {
		patch.Features = &in.Features
	}
	if err := d.apply(patch); err != nil {
		return nil, err
	}
	return d, nil
}

// apply validates every provided field first, then assigns them
func (d *OfferDetail) apply(p DetailPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return shared.NewFieldError("details", "title: This field may not be blank.")
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			return shared.NewFieldError("details", "title: Ensure this field has no more than 255 characters.")
		}
	}
	if p.Revisions != nil && *p.Revisions < 0 {
		return shared.NewFieldError("details", "revisions: Ensure this value is greater than or equal to 0.")
	}
	if p.DeliveryTimeInDays != nil && *p.DeliveryTimeInDays < 0 {
		return shared.NewFieldError("details", "delivery_time_in_days: Ensure this value is greater than or equal to 0.")
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}

	if p.Title != nil {
		d.Title = strings.TrimSpace(*p.Title)
	}
	if p.Revisions != nil {
		d.Revisions = *p.Revisions
	}
	if p.DeliveryTimeInDays != nil {
		d.DeliveryTimeInDays = *p.DeliveryTimeInDays
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Features != nil {
		d.Features = append([]string{}, (*p.Features)...)
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewFieldError("details", "price: Ensure this value is greater than or equal to 0.")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return shared.NewFieldError("details", "price: Ensure that there are no more than 7 digits in total.")
	}
	if !price.Equal(price.Truncate(2)) {
		return shared.NewFieldError("details", "price: Ensure that there are no more than 2 decimal places.")
	}
	return nil
}

func invalidOfferType(t OfferType) *shared.DomainError {
	if t == "" {
		return shared.NewFieldError("details", "offer_type is required for each detail patch.")
	}
	return notAChoice(t)
}

func invalidCreateType(t OfferType) *shared.DomainError {
	if t == "" {
		return shared.NewFieldError("details", "offer_type: This field is required.")
	}
	return notAChoice(t)
}

func notAChoice(t OfferType) *shared.DomainError {
	return shared.NewFieldError("details", fmt.Sprintf("offer_type: \"%s\" is not a valid choice.", t))
}
