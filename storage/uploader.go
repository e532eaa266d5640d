package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Location is the public URL the
// object is served from.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores tournament assets (logos) in an object store.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
