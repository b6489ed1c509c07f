package validation

import (
	"fmt"
	"net/http"
)

// Allowed upload content types. The pipeline only handles still photographs.
var allowedContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// ImageUploadValidator validates inbound image uploads before they reach the
// resolution pipeline
type ImageUploadValidator struct {
	maxSize int64
}

// NewImageUploadValidator creates a validator with the given size limit in bytes
func NewImageUploadValidator(maxSize int64) *ImageUploadValidator {
	return &ImageUploadValidator{maxSize: maxSize}
}

// Validate checks the raw upload bytes. The declared content type from the
// multipart header is advisory only; the sniffed type is what counts.
func (v *ImageUploadValidator) Validate(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image upload")
	}

	if v.maxSize > 0 && int64(len(data)) > v.maxSize {
		return fmt.Errorf("image exceeds maximum size of %d bytes", v.maxSize)
	}

	contentType := http.DetectContentType(data)
	if !allowedContentTypes[contentType] {
		return fmt.Errorf("unsupported image type %q (want image/png or image/jpeg)", contentType)
	}

	return nil
}
