package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidImage = errors.New("image must be a base64 data URI like data:image/png;base64,...")

var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Image is a decoded inline image ready to be stored.
type Image struct {
	Data        []byte
	Extension   string
	ContentType string
}

// DecodeDataURI turns "data:image/<ext>;base64,<payload>" into raw bytes.
func DecodeDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:image/") {
		return nil, ErrInvalidImage
	}
	ext := strings.ToLower(strings.TrimPrefix(header, "data:image/"))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidImage, ext)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return &Image{Data: data, Extension: ext, ContentType: contentType}, nil
}

// Store persists recipe images and returns the public URL of the object.
type Store interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, url string) error
}

func objectName(img *Image) string {
	return "recipes/" + uuid.NewString() + "." + img.Extension
}
