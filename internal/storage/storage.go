package storage

import (
	"context"
	"io"
)

// StoredFile is the result of an upload: a public URL for serving and an
// opaque public ID for later deletion.
type StoredFile struct {
	URL      string
	PublicID string
}

// Storage is the file-storage collaborator used for profile images. Upload
// must complete before a user record referencing the image is created.
type Storage interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*StoredFile, error)
	Delete(ctx context.Context, publicID string) error
	// Open returns the stored content for serving; local backend only.
	Open(publicID string) (io.ReadCloser, error)
}
