package handler

import "github.com/coderr/backend/internal/interfaces/http/dto"

// ErrorResponse documents the error envelope for OpenAPI
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Detail  string         `json:"detail" example:"Not found."`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// StatusResponse is a short status message
// @Description Status message
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
