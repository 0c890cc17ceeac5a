package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/coderr/backend/internal/application/offer"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// OfferHandler serves offers and their details
type OfferHandler struct {
	BaseHandler
	offerService *offer.Service
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService *offer.Service) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// List godoc
// @ID           listOffers
// @Summary      List offers
// @Description  Paginated, filterable and searchable list of offers
// @Tags         offers
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        creator_id query int false "Owner user ID"
// @Param        min_price query number false "Lower bound of the cheapest tier"
// @Param        max_delivery_time query int false "Upper bound of the fastest delivery"
// @Param        search query string false "Terms matched against title and description"
// @Param        ordering query string false "updated_at or min_price, prefix - for descending"
// @Success      200 {object} dto.PageResponse[offer.OfferListItem]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /offers/ [get]
func (h *OfferHandler) List(c *gin.Context) {
	q, ok := h.parseListQuery(c)
	if !ok {
		return
	}
	page, err := h.offerService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPageResponse(
		page.Items, page.Total, page.Page, page.HasNext(), page.HasPrevious(), absoluteURL(c),
	))
}

func (h *OfferHandler) parseListQuery(c *gin.Context) (offer.ListQuery, bool) {
	var q offer.ListQuery

	if s, present := c.GetQuery("page"); present {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			h.HandleError(c, offer.ErrInvalidPage)
			return q, false
		}
		q.Page = n
	}
	// an unusable page_size falls back to the default
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		q.PageSize = &n
	}

	var ok bool
	if q.CreatorID, ok = queryUint(c, "creator_id"); !ok {
		h.FieldError(c, "creator_id", msgInvalidInteger)
		return q, false
	}
	if q.MinPrice, ok = queryDecimal(c, "min_price"); !ok {
		h.FieldError(c, "min_price", msgInvalidNumber)
		return q, false
	}
	if q.MaxDeliveryTime, ok = queryInt(c, "max_delivery_time"); !ok {
		h.FieldError(c, "max_delivery_time", msgInvalidInteger)
		return q, false
	}
	q.Search = c.Query("search")
	q.Ordering = c.Query("ordering")
	return q, true
}

// Get godoc
// @ID           getOffer
// @Summary      Get an offer
// @Tags         offers
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Offer ID"
// @Success      200 {object} offer.OfferView
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /offers/{id}/ [get]
func (h *OfferHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	view, err := h.offerService.Get(c.Request.Context(), id, baseURL(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Create godoc
// @ID           createOffer
// @Summary      Create an offer
// @Description  Business users only. Exactly one basic, standard and premium detail is required.
// @Tags         offers
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body offer.CreateOfferRequest true "Offer with its three details"
// @Success      201 {object} offer.OfferResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /offers/ [post]
func (h *OfferHandler) Create(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req offer.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.offerService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @ID           updateOffer
// @Summary      Update an offer
// @Description  Owner only. Details are patched by offer_type; "image": null removes the image.
// @Tags         offers
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Offer ID"
// @Param        request body offer.PatchOfferRequest true "Fields to change"
// @Success      200 {object} offer.OfferResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /offers/{id}/ [patch]
func (h *OfferHandler) Update(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.offerService.Patch(c.Request.Context(), actorID, id, func(req *offer.PatchOfferRequest) error {
		raw, _, err := bindPatch(c, req)
		if err != nil {
			return bodyError{err: err}
		}
		req.ClearImage = isJSONNull(raw, "image")
		return nil
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UploadImage godoc
// @ID           uploadOfferImage
// @Summary      Upload the offer image
// @Tags         offers
// @Accept       multipart/form-data
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Offer ID"
// @Param        image formData file true "Image"
// @Success      200 {object} offer.OfferResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /offers/{id}/image/ [post]
func (h *OfferHandler) UploadImage(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	file, err := readUpload(c, "image")
	if err != nil {
		h.UploadError(c, "image", err)
		return
	}
	resp, err := h.offerService.UploadImage(c.Request.Context(), actorID, id, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteOffer
// @Summary      Delete an offer
// @Tags         offers
// @Security     TokenAuth
// @Param        id path int true "Offer ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /offers/{id}/ [delete]
func (h *OfferHandler) Delete(c *gin.Context) {
	actorID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	if err := h.offerService.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetDetail godoc
// @ID           getOfferDetail
// @Summary      Get an offer detail
// @Tags         offers
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Offer detail ID"
// @Success      200 {object} offer.DetailResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /offerdetails/{id}/ [get]
func (h *OfferHandler) GetDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.offerService.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RedirectDetail sends the relative detail links of the offer list to the API route
func (h *OfferHandler) RedirectDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/offerdetails/%d/", id))
}
