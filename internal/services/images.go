package services

import (
	"fmt"
	"io"
	"path"
	"strings"

	"cityshops/internal/common"

	"github.com/google/uuid"
)

const maxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageUpload is an image received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// imageObjectName validates the upload and returns its object key, e.g.
// shops/<shop id>/<random>.png.
func imageObjectName(kind string, ownerID uuid.UUID, upload ImageUpload) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(upload.ContentType)]
	if !ok {
		return "", common.InvalidRequest("image must be JPEG, PNG or WebP")
	}
	if upload.Size <= 0 {
		return "", common.InvalidRequest("image is empty")
	}
	if upload.Size > maxImageSize {
		return "", common.InvalidRequest(fmt.Sprintf("image cannot exceed %d bytes", maxImageSize))
	}
	return path.Join(kind, ownerID.String(), uuid.NewString()+ext), nil
}
