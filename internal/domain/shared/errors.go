package shared

import "errors"

// DomainError represents a domain-level error.
// Field is set when the error is attributable to a single input field.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped sentinels compare equal
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewFieldError creates an INVALID_INPUT error bound to a request field
func NewFieldError(field, message string) *DomainError {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Field:   field,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Not found.")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized  = NewDomainError("UNAUTHORIZED", "Authentication credentials were not provided.")
	ErrForbidden     = NewDomainError("FORBIDDEN", "You do not have permission to perform this action.")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// IsNotFound reports whether err is (or wraps) a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
