package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/coderr/backend/internal/application/media"
	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

const (
	msgNoFile         = "No file was submitted."
	msgInvalidInteger = "A valid integer is required."
	msgInvalidNumber  = "A valid number is required."
)

var errNoFile = errors.New("no file submitted")

// readUpload loads the multipart part named field into memory. The content
// type is sniffed when the client did not send a usable one.
func readUpload(c *gin.Context, field string) (media.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return media.File{}, errNoFile
		}
		return media.File{}, err
	}
	f, err := header.Open()
	if err != nil {
		return media.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return media.File{}, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return media.File{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// bindPatch binds a JSON body into req and returns the top-level keys of the
// body that are not in allowed, sorted.
func bindPatch(c *gin.Context, req any, allowed ...string) (raw map[string]json.RawMessage, unknown []string, err error) {
	raw, unknown, err = bindKeys(c, allowed...)
	if err != nil {
		return nil, nil, err
	}
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		return nil, nil, err
	}
	return raw, unknown, nil
}

// bindKeys reads only the top-level keys of a JSON body and returns those not
// in allowed, sorted. The typed decode is left for later.
func bindKeys(c *gin.Context, allowed ...string) (raw map[string]json.RawMessage, unknown []string, err error) {
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		return nil, nil, err
	}
	for key := range raw {
		if !slices.Contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return raw, unknown, nil
}

// bodyError carries a binding failure through a service call so that
// HandleError still answers it with field details
type bodyError struct{ err error }

func (e bodyError) Error() string { return e.err.Error() }
func (e bodyError) Unwrap() error { return e.err }

// decodeBody binds the cached JSON body into req, wrapping failures in bodyError
func decodeBody(c *gin.Context, req any) error {
	if err := c.ShouldBindBodyWith(req, binding.JSON); err != nil {
		return bodyError{err: err}
	}
	return nil
}

// isJSONNull reports whether key is present in raw with a null value
func isJSONNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && strings.TrimSpace(string(v)) == "null"
}

// queryUint parses an optional unsigned query parameter. ok is false when
// the parameter is present but not a valid integer.
func queryUint(c *gin.Context, name string) (value *uint, ok bool) {
	s, present := c.GetQuery(name)
	if !present || s == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, false
	}
	u := uint(n)
	return &u, true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string) (value *int, ok bool) {
	s, present := c.GetQuery(name)
	if !present || s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &n, true
}

// queryDecimal parses an optional decimal query parameter
func queryDecimal(c *gin.Context, name string) (value *decimal.Decimal, ok bool) {
	s, present := c.GetQuery(name)
	if !present || s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &d, true
}

// UploadError answers a failed readUpload call
func (h *BaseHandler) UploadError(c *gin.Context, field string, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errNoFile):
		h.FieldError(c, field, msgNoFile)
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size.")
	default:
		h.FieldError(c, field, "The submitted data was not a file.")
	}
}
