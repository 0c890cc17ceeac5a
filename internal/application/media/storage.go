// Package media holds the object storage port used for profile files and offer images.
package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/coderr/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Key prefixes of stored objects
const (
	ProfileFilePrefix = "profile_files"
	OfferImagePrefix  = "offer_images"
)

// ObjectStorage stores uploaded binaries under opaque keys
type ObjectStorage interface {
	// Upload stores data under key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// DeleteObject removes the object. Removing a missing object is not an error.
	DeleteObject(ctx context.Context, key string) error

	// ObjectExists reports whether key is stored
	ObjectExists(ctx context.Context, key string) (bool, error)

	// URL returns a URL a browser can fetch the object from
	URL(ctx context.Context, key string) (string, error)
}

// File is an uploaded file read into memory
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Validate rejects empty uploads and, when imageOnly is set, non-image content
func (f File) Validate(field string, imageOnly bool) error {
	if len(f.Data) == 0 {
		return shared.NewFieldError(field, "The submitted file is empty.")
	}
	if imageOnly && !strings.HasPrefix(f.ContentType, "image/") {
		return shared.NewFieldError(field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	return nil
}

// NewKey builds "{prefix}/{ownerID}/{uuid}{ext}" keeping the lower-cased extension of filename
func NewKey(prefix string, ownerID uint, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%d/%s%s", prefix, ownerID, uuid.NewString(), ext)
}
