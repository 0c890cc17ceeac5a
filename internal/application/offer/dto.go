package offer

import (
	"time"

	"github.com/coderr/backend/internal/domain/offer"
	"github.com/shopspring/decimal"
)

// DetailRequest is one tier of a create request
type DetailRequest struct {
	Title              string           `json:"title" binding:"required"`
	Revisions          *int             `json:"revisions" binding:"required"`
	DeliveryTimeInDays *int             `json:"delivery_time_in_days" binding:"required"`
	Price              *decimal.Decimal `json:"price" binding:"required"`
	Features           []string         `json:"features"`
	OfferType          string           `json:"offer_type" binding:"required"`
}

// CreateOfferRequest is the body of POST /api/offers/.
// Images are attached afterwards through the upload endpoint.
type CreateOfferRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Details     []DetailRequest `json:"details" binding:"required,dive"`
}

// DetailPatchRequest is a partial update of the tier named by OfferType
type DetailPatchRequest struct {
	OfferType          string           `json:"offer_type"`
	Title              *string          `json:"title"`
	Revisions          *int             `json:"revisions"`
	DeliveryTimeInDays *int             `json:"delivery_time_in_days"`
	Price              *decimal.Decimal `json:"price"`
	Features           *[]string        `json:"features"`
}

// PatchOfferRequest is the body of PATCH /api/offers/{id}/.
// ClearImage is set by the handler when the body carries "image": null.
type PatchOfferRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Details     []DetailPatchRequest `json:"details"`
	ClearImage  bool                 `json:"-"`
}

// ListQuery holds the parsed query parameters of the offer list
type ListQuery struct {
	// Page is 1-based; zero means the first page
	Page int
	// PageSize is nil when the client sent none or an invalid value
	PageSize        *int
	CreatorID       *uint
	MinPrice        *decimal.Decimal
	MaxDeliveryTime *int
	Search          string
	Ordering        string
}

// DetailResponse is the full representation of an offer detail
type DetailResponse struct {
	ID                 uint     `json:"id"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              string   `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

// OfferResponse is returned by create, patch and image upload
type OfferResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Image       *string          `json:"image"`
	Description string           `json:"description"`
	Details     []DetailResponse `json:"details"`
}

// DetailLink points at a detail resource
type DetailLink struct {
	ID  uint   `json:"id"`
	URL string `json:"url"`
}

// UserDetails is the public part of the offer owner
type UserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// OfferView is the retrieve representation of an offer
type OfferView struct {
	ID              uint         `json:"id"`
	User            uint         `json:"user"`
	Title           string       `json:"title"`
	Image           *string      `json:"image"`
	Description     string       `json:"description"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Details         []DetailLink `json:"details"`
	MinPrice        string       `json:"min_price"`
	MinDeliveryTime int          `json:"min_delivery_time"`
}

// OfferListItem is a row of the paginated offer list
type OfferListItem struct {
	OfferView
	UserDetails UserDetails `json:"user_details"`
}

// ToDetailResponse converts a domain detail
func ToDetailResponse(d *offer.OfferDetail) DetailResponse {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return DetailResponse{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price.StringFixed(2),
		Features:           features,
		OfferType:          string(d.OfferType),
	}
}

func toOfferResponse(o *offer.Offer, imageURL *string) *OfferResponse {
	details := make([]DetailResponse, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, ToDetailResponse(d))
	}
	return &OfferResponse{
		ID:          o.ID,
		Title:       o.Title,
		Image:       imageURL,
		Description: o.Description,
		Details:     details,
	}
}

func toOfferView(o *offer.Offer, imageURL *string, detailURL func(id uint) string) OfferView {
	links := make([]DetailLink, 0, len(o.Details))
	for _, d := range o.Details {
		links = append(links, DetailLink{ID: d.ID, URL: detailURL(d.ID)})
	}
	return OfferView{
		ID:              o.ID,
		User:            o.UserID,
		Title:           o.Title,
		Image:           imageURL,
		Description:     o.Description,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Details:         links,
		MinPrice:        o.MinPrice().StringFixed(2),
		MinDeliveryTime: o.MinDeliveryTime(),
	}
}

func toDetailInputs(in []DetailRequest) []offer.DetailInput {
	out := make([]offer.DetailInput, 0, len(in))
	for _, d := range in {
		di := offer.DetailInput{
			Title:     d.Title,
			Features:  d.Features,
			OfferType: offer.OfferType(d.OfferType),
		}
		if d.Revisions != nil {
			di.Revisions = *d.Revisions
		}
		if d.DeliveryTimeInDays != nil {
			di.DeliveryTimeInDays = *d.DeliveryTimeInDays
		}
		if d.Price != nil {
			di.Price = *d.Price
		}
		out = append(out, di)
	}
	return out
}

func toPatch(req PatchOfferRequest) offer.Patch {
	p := offer.Patch{
		Title:       req.Title,
		Description: req.Description,
		ClearImage:  req.ClearImage,
	}
	for _, d := range req.Details {
		p.Details = append(p.Details, offer.DetailPatch{
			OfferType:          offer.OfferType(d.OfferType),
			Title:              d.Title,
			Revisions:          d.Revisions,
			DeliveryTimeInDays: d.DeliveryTimeInDays,
			Price:              d.Price,
			Features:           d.Features,
		})
	}
	return p
}
