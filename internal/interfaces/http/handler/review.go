package handler

import (
	"github.com/coderr/backend/internal/application/review"
	"github.com/gin-gonic/gin"
)

// ReviewHandler serves customer reviews of business users
type ReviewHandler struct {
	BaseHandler
	reviewService *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List godoc
// @ID           listReviews
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Security     TokenAuth
// @Param        business_user_id query int false "Reviewed business user"
// @Param        reviewer_id query int false "Reviewing customer"
// @Param        ordering query string false "updated_at or rating, prefix - for descending"
// @Success      200 {array} review.ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /reviews/ [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var q review.ListQuery
	var ok bool
	if q.BusinessUserID, ok = queryUint(c, "business_user_id"); !ok {
		h.FieldError(c, "business_user_id", msgInvalidInteger)
		return
	}
	if q.ReviewerID, ok = queryUint(c, "reviewer_id"); !ok {
		h.FieldError(c, "reviewer_id", msgInvalidInteger)
		return
	}
	q.Ordering = c.Query("ordering")

	reviews, err := h.reviewService.List(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reviews)
}

// Create godoc
// @ID           createReview
// @Summary      Review a business user
// @Description  Customers only, one review per business user
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body review.CreateReviewRequest true "Review"
// @Success      201 {object} review.ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /reviews/ [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.reviewService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update godoc
// @ID           updateReview
// @Summary      Update a review
// @Description  Reviewer only. rating and description are the only accepted keys.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Review ID"
// @Param        request body review.UpdateReviewRequest true "Fields to change"
// @Success      200 {object} review.ReviewResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reviews/{id}/ [patch]
func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	_, unknown, err := bindKeys(c, "rating", "description")
	if err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.reviewService.Patch(c.Request.Context(), userID, id, unknown, func(req *review.UpdateReviewRequest) error {
		return decodeBody(c, req)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteReview
// @Summary      Delete a review
// @Tags         reviews
// @Security     TokenAuth
// @Param        id path int true "Review ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reviews/{id}/ [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
