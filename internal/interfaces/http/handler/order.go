package handler

import (
	"github.com/coderr/backend/internal/application/order"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves orders and the per-business order counters
type OrderHandler struct {
	BaseHandler
	orderService *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @ID           listOrders
// @Summary      List own orders
// @Description  Orders where the authenticated user is customer or business, newest first
// @Tags         orders
// @Produce      json
// @Security     TokenAuth
// @Success      200 {array} order.OrderResponse
// @Failure      401 {object} ErrorResponse
// @Router       /orders/ [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	orders, err := h.orderService.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Order ID"
// @Success      200 {object} order.OrderResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id}/ [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.orderService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create godoc
// @ID           createOrder
// @Summary      Order an offer detail
// @Description  Customers only. The detail is copied into the order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        request body order.CreateOrderRequest true "Offer detail to order"
// @Success      201 {object} order.OrderResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/ [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	resp, err := h.orderService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Change the order status
// @Description  Only the business user of the order may change it. status is the only accepted key.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Order ID"
// @Param        request body order.UpdateStatusRequest true "New status"
// @Success      200 {object} order.OrderResponse
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id}/ [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	_, unknown, err := bindKeys(c, "status")
	if err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orderService.PatchStatus(c.Request.Context(), userID, id, unknown, func(req *order.UpdateStatusRequest) error {
		return decodeBody(c, req)
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteOrder
// @Summary      Delete an order
// @Description  Staff only
// @Tags         orders
// @Security     TokenAuth
// @Param        id path int true "Order ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id}/ [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CountInProgress godoc
// @ID           countOrdersInProgress
// @Summary      Count in-progress orders of a business user
// @Tags         orders
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Business user ID"
// @Success      200 {object} order.OrderCountResponse
// @Failure      404 {object} ErrorResponse
// @Router       /order-count/{id}/ [get]
func (h *OrderHandler) CountInProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.orderService.CountInProgress(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CountCompleted godoc
// @ID           countCompletedOrders
// @Summary      Count completed orders of a business user
// @Tags         orders
// @Produce      json
// @Security     TokenAuth
// @Param        id path int true "Business user ID"
// @Success      200 {object} order.CompletedOrderCountResponse
// @Failure      404 {object} ErrorResponse
// @Router       /completed-order-count/{id}/ [get]
func (h *OrderHandler) CountCompleted(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	resp, err := h.orderService.CountCompleted(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
