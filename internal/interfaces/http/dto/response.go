package dto

import (
	"net/url"
	"strconv"
)

// ErrorResponse is the body of every non-2xx answer.
// Detail repeats the message at the top level for clients that only read "detail".
type ErrorResponse struct {
	Success bool       `json:"success"`
	Detail  string     `json:"detail"`
	Error   *ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names the request field an error belongs to
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Detail:  message,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400 body carrying per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// PageResponse is the paginated list shape: {count, next, previous, results}
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPageResponse builds next/previous links from the absolute request URL.
// The previous link of page 2 drops the page parameter altogether.
func NewPageResponse[T any](results []T, count int64, page int, hasNext, hasPrevious bool, requestURL *url.URL) PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := PageResponse[T]{Count: count, Results: results}
	if requestURL == nil {
		return resp
	}
	if hasNext {
		next := pageURL(requestURL, page+1)
		resp.Next = &next
	}
	if hasPrevious {
		prev := pageURL(requestURL, page-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// IDRequest binds a numeric :id path parameter
type IDRequest struct {
	ID uint `uri:"id" binding:"required"`
}
