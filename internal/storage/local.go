package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores files on the local filesystem and serves them through
// the HTTP file route. Keys are uuid-based so original filenames never leak.
type LocalStorage struct {
	baseURL   string
	uploadDir string
}

func NewLocalStorage(baseURL, uploadDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		uploadDir: uploadDir,
	}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*StoredFile, error) {
	if !allowedContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.uploadDir, key)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{
		URL:      fmt.Sprintf("%s/files/%s", s.baseURL, key),
		PublicID: key,
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, publicID string) error {
	// publicID is the bare key; reject anything path-like.
	if publicID != filepath.Base(publicID) {
		return fmt.Errorf("invalid public ID: %s", publicID)
	}
	if err := os.Remove(filepath.Join(s.uploadDir, publicID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Open(publicID string) (io.ReadCloser, error) {
	if publicID != filepath.Base(publicID) {
		return nil, fmt.Errorf("invalid public ID: %s", publicID)
	}
	return os.Open(filepath.Join(s.uploadDir, publicID))
}

func allowedContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
