package handler

import (
	"github.com/coderr/backend/internal/application/stats"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves the landing page figures
type StatsHandler struct {
	BaseHandler
	statsService *stats.Service
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *stats.Service) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// BaseInfo godoc
// @ID           getBaseInfo
// @Summary      Platform figures
// @Description  Review count, average rating, business profile count and offer count
// @Tags         stats
// @Produce      json
// @Success      200 {object} stats.BaseInfo
// @Failure      500 {object} ErrorResponse
// @Router       /base-info/ [get]
func (h *StatsHandler) BaseInfo(c *gin.Context) {
	info, err := h.statsService.BaseInfo(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
