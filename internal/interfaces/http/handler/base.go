package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/coderr/backend/internal/infrastructure/logger"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/coderr/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// getUserID returns the authenticated user, 0 when the request is anonymous
func getUserID(c *gin.Context) uint {
	return middleware.GetJWTUserID(c)
}

// parseID reads a positive integer path parameter. Anything else cannot
// address a resource and is answered like a missing one.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// baseURL returns scheme://host of the current request
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

// absoluteURL rebuilds the full request URL, query included
func absoluteURL(c *gin.Context) *url.URL {
	u, err := url.Parse(baseURL(c) + c.Request.URL.RequestURI())
	if err != nil {
		return nil
	}
	return u
}

// Success sends a 200 response with the plain resource body
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// FieldError sends a 400 naming the offending field
func (h *BaseHandler) FieldError(c *gin.Context, field, message string) {
	h.ValidationError(c, []dto.ValidationDetail{{Field: field, Message: message}})
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, shared.ErrNotFound.Message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, shared.ErrUnauthorized.Message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	message := "Request validation failed"
	if len(details) == 1 {
		message = details[0].Message
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(message, getRequestID(c), details))
}

// BindError answers a failed ShouldBind* call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
		return
	}
	h.BadRequest(c, err.Error())
}

// HandleError converts domain errors to HTTP responses. Errors that are not
// domain errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var bodyErr bodyError
	if errors.As(err, &bodyErr) {
		h.BindError(c, bodyErr.err)
		return
	}
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		status := dto.GetHTTPStatus(code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("request failed", zap.String("code", domainErr.Code), zap.Error(err))
		}
		resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID)
		if domainErr.Field != "" {
			resp.Error.Details = []dto.ValidationDetail{{Field: domainErr.Field, Message: domainErr.Message}}
		}
		c.JSON(status, resp)
		return
	}

	logger.GetGinLogger(c).Error("unexpected error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"A server error occurred.",
		requestID,
	))
}

// requireUser answers 401 when the route was reached without an authenticated user
func (h *BaseHandler) requireUser(c *gin.Context) (uint, bool) {
	userID := getUserID(c)
	if userID == 0 {
		h.Unauthorized(c)
		return 0, false
	}
	return userID, true
}
