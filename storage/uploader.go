package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Download(ctx context.Context, key string) ([]byte, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// PhotoKey builds a collision-free object key for an uploaded photo,
// e.g. "registrations/live/7f9c...-1a2b.jpg".
func PhotoKey(prefix, extension string) string {
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
}
