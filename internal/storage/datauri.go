package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/macro-tracker/internal/domain"
)

var errInvalidDataURI = errors.New("invalid data URI, expected data:image/<type>;base64,<payload>")

// DecodeDataURI turns data:image/...;base64,... into raw image bytes
func DecodeDataURI(uri string) (domain.Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return domain.Image{}, errInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return domain.Image{}, errInvalidDataURI
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(mimeType, "image/") {
		return domain.Image{}, errInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return domain.Image{}, fmt.Errorf("decode image payload: %w", err)
	}
	if len(data) == 0 {
		return domain.Image{}, errors.New("image payload is empty")
	}
	return domain.Image{Data: data, MIMEType: mimeType}, nil
}

// Extension returns a file extension for an image MIME type
func Extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
