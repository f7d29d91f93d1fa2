package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"
)

var (
	ErrPhotoTooLarge     = errors.New("photo exceeds the maximum allowed size")
	ErrPhotoUnsupported  = errors.New("photo format not supported")
	ErrPhotoDimensions   = errors.New("photo dimensions exceed the allowed maximum")
	ErrPhotoNotDecodable = errors.New("photo could not be decoded")
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a candidate profile photo as received from the client.
type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

// Photo is a validated upload ready for object storage.
type Photo struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Validator checks the size, declared content type, and decoded dimensions
// of an upload before it touches object storage.
type Validator struct {
	maxBytes     int64
	maxDimension int
}

func NewValidator(maxBytes int64, maxDimension int) *Validator {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if maxDimension <= 0 {
		maxDimension = 4096
	}
	return &Validator{maxBytes: maxBytes, maxDimension: maxDimension}
}

func (v *Validator) Validate(upload Upload) (*Photo, error) {
	if upload.Size > v.maxBytes {
		return nil, ErrPhotoTooLarge
	}

	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, ErrPhotoUnsupported
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, v.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > v.maxBytes {
		return nil, ErrPhotoTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrPhotoNotDecodable
	}
	if "image/"+format != contentType {
		return nil, ErrPhotoUnsupported
	}
	if cfg.Width > v.maxDimension || cfg.Height > v.maxDimension {
		return nil, ErrPhotoDimensions
	}

	return &Photo{
		Bytes:       data,
		ContentType: contentType,
		Extension:   ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
