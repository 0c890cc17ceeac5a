package offer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Detail validation messages shared with the HTTP contract
const (
	MsgExactlyThreeDetails = "An offer must contain exactly 3 details."
	MsgUniqueAcrossDetails = "offer_type must be unique across details."
	MsgRequiredTypes       = "Details must include basic, standard and premium."
	MsgUniqueInPatch       = "offer_type must be unique in details."
)

// Offer is a service listing owned by a business user.
// A persisted offer always carries exactly one detail per OfferType.
type Offer struct {
	shared.BaseAggregateRoot
	UserID      uint
	Title       string
	Image       *string
	Description string
	Details     []*OfferDetail
}

// NewOffer validates the input and builds an offer with its three details
func NewOffer(userID uint, title, description string, image *string, details []DetailInput) (*Offer, error) {
	o := &Offer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Image:             image,
	}
	if err := o.setTitle(title); err != nil {
		return nil, err
	}
	o.Description = description

	for _, d := range details {
		if !d.OfferType.IsValid() {
			return nil, invalidCreateType(d.OfferType)
		}
	}
	if len(details) != 3 {
		return nil, shared.NewFieldError("details", MsgExactlyThreeDetails)
	}
	types := make(map[OfferType]bool, 3)
	for _, d := range details {
		types[d.OfferType] = true
	}
	if len(types) != 3 {
		return nil, shared.NewFieldError("details", MsgUniqueAcrossDetails)
	}
	for _, t := range AllOfferTypes {
		if !types[t] {
			return nil, shared.NewFieldError("details", MsgRequiredTypes)
		}
	}

	o.Details = make([]*OfferDetail, 0, 3)
	for _, in := range details {
		d, err := newDetail(in)
		if err != nil {
			return nil, err
		}
		o.Details = append(o.Details, d)
	}
	return o, nil
}

// Patch is a partial update of an offer. Nil fields are left untouched.
// ClearImage removes the image when set.
type Patch struct {
	Title       *string
	Description *string
	Image       *string
	ClearImage  bool
	Details     []DetailPatch
}

// Apply validates the whole patch and then applies it. Details are matched by
// offer type and keep their identity; no detail is ever added or removed.
// The returned key is the previous image when it was replaced or cleared.
func (o *Offer) Apply(p Patch) (replacedImage *string, err error) {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return nil, err
		}
	}

	byType := make(map[OfferType]*OfferDetail, len(o.Details))
	for _, d := range o.Details {
		byType[d.OfferType] = d
	}
	for _, dp := range p.Details {
		if !dp.OfferType.IsValid() {
			return nil, invalidOfferType(dp.OfferType)
		}
	}
	seen := make(map[OfferType]bool, len(p.Details))
	for _, dp := range p.Details {
		if seen[dp.OfferType] {
			return nil, shared.NewFieldError("details", MsgUniqueInPatch)
		}
		seen[dp.OfferType] = true
	}
	targets := make([]*OfferDetail, len(p.Details))
	for i, dp := range p.Details {
		d, ok := byType[dp.OfferType]
		if !ok {
			return nil, shared.NewFieldError("details", fmt.Sprintf("OfferDetail with offer_type '%s' not found.", dp.OfferType))
		}
		// validate against a scratch copy so a later failure leaves the offer untouched
		scratch := *d
		if err := scratch.apply(dp); err != nil {
			return nil, err
		}
		targets[i] = d
	}

	for i, dp := range p.Details {
		_ = targets[i].apply(dp)
	}
	if p.Title != nil {
		_ = o.setTitle(*p.Title)
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.ClearImage || p.Image != nil {
		if o.Image != nil && (p.ClearImage || *o.Image != *p.Image) {
			replacedImage = o.Image
		}
		if p.ClearImage {
			o.Image = nil
		} else {
			o.Image = p.Image
		}
	}
	o.Touch()
	return replacedImage, nil
}

// SetImage replaces the image key and returns the previous one
func (o *Offer) SetImage(key string) *string {
	prev := o.Image
	o.Image = &key
	o.Touch()
	return prev
}

// IsOwnedBy reports whether userID owns the offer
func (o *Offer) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// DetailByType returns the detail of the given tier, or nil
func (o *Offer) DetailByType(t OfferType) *OfferDetail {
	for _, d := range o.Details {
		if d.OfferType == t {
			return d
		}
	}
	return nil
}

// MinPrice is the cheapest detail price, zero without details
func (o *Offer) MinPrice() decimal.Decimal {
	if len(o.Details) == 0 {
		return decimal.Zero
	}
	lowest := o.Details[0].Price
	for _, d := range o.Details[1:] {
		if d.Price.LessThan(lowest) {
			lowest = d.Price
		}
	}
	return lowest
}

// MinDeliveryTime is the shortest delivery time, zero without details
func (o *Offer) MinDeliveryTime() int {
	if len(o.Details) == 0 {
		return 0
	}
	lowest := o.Details[0].DeliveryTimeInDays
	for _, d := range o.Details[1:] {
		lowest = min(lowest, d.DeliveryTimeInDays)
	}
	return lowest
}

func (o *Offer) setTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	o.Title = strings.TrimSpace(title)
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewFieldError("title", "This field may not be blank.")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return shared.NewFieldError("title", "Ensure this field has no more than 255 characters.")
	}
	return nil
}
