package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const validationFailedMessage = "Request validation failed"

// SetupValidator reports validation errors under JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// ValidationDetails turns binding errors into field-keyed details.
// It returns nil when err is not a validation or decoding problem.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]dto.ValidationDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   fieldPath(e),
				Message: getValidationMessage(e),
			})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		}
		return []dto.ValidationDetail{{Field: field, Message: "Incorrect type. Expected " + typeErr.Type.String() + "."}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []dto.ValidationDetail{{Field: "non_field_errors", Message: "JSON parse error."}}
	}
	return nil
}

// FormatValidationErrors formats binding errors into the error envelope
func FormatValidationErrors(err error, requestID string) dto.ErrorResponse {
	details := ValidationDetails(err)
	if details == nil {
		details = []dto.ValidationDetail{{Field: "non_field_errors", Message: err.Error()}}
	}
	return dto.NewValidationErrorResponse(validationFailedMessage, requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(RequestIDKey)))
}

// fieldPath drops the struct name from the namespace: "details[1].price"
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if e.Kind() == reflect.String {
			return "Ensure this field has at least " + e.Param() + " characters."
		}
		if e.Kind() == reflect.Slice {
			return "Ensure this field has at least " + e.Param() + " elements."
		}
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "max":
		if e.Kind() == reflect.String {
			return "Ensure this field has no more than " + e.Param() + " characters."
		}
		if e.Kind() == reflect.Slice {
			return "Ensure this field has no more than " + e.Param() + " elements."
		}
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "oneof":
		return "\"" + stringValue(e.Value()) + "\" is not a valid choice."
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + e.Param() + "."
	default:
		return "Invalid value."
	}
}

func stringValue(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return ""
}
