package handler

import (
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/coderr/backend/internal/infrastructure/logger"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable
type Pinger interface {
	Ping() error
}

// ObjectOpener reads objects held in process memory
type ObjectOpener interface {
	Open(key string) ([]byte, string, bool)
}

// SystemHandler handles health, ping and locally stored media
type SystemHandler struct {
	BaseHandler
	db        Pinger
	media     ObjectOpener
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. media may be nil when objects
// are served by an external store.
func NewSystemHandler(db Pinger, media ObjectOpener, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		media:     media,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database" example:"ok"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getSystemHealth
// @Summary      Health check
// @Description  Reports service and database status
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check failed", zap.Error(err))
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Simple ping endpoint to check if the API is responsive
// @Tags         system
// @Produce      json
// @Success      200 {object} PingResponse
// @Router       /ping/ [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Media serves an object held by the in-memory object store
func (h *SystemHandler) Media(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if h.media == nil || key == "" {
		h.NotFound(c)
		return
	}
	data, contentType, ok := h.media.Open(key)
	if !ok {
		h.NotFound(c)
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}

// NoRoute answers unknown paths with the error envelope
func (h *SystemHandler) NoRoute(c *gin.Context) {
	h.NotFound(c)
}

// NoMethod answers a known path requested with an unsupported method
func (h *SystemHandler) NoMethod(c *gin.Context) {
	h.Error(c, http.StatusMethodNotAllowed, dto.ErrCodeMethodNotAllowed, "Method \""+c.Request.Method+"\" not allowed.")
}
