package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage keeps blobs in a directory on disk. Used in development;
// production sets STORAGE_TYPE=gcs.
type LocalStorage struct {
	Dir     string
	BaseURL string // e.g. "http://localhost:8083"
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{Dir: dir, BaseURL: baseURL}, nil
}

func (s *LocalStorage) Upload(ctx context.Context, r io.Reader, objectName, contentType string) error {
	// Object names are generated server-side, never taken from client
	// filenames, so a plain join is safe here.
	dst, err := os.Create(filepath.Join(s.Dir, objectName))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// SignedURL returns a plain static-file URL. Local storage has no
// signing; the /uploads/ route in main.go serves the directory.
func (s *LocalStorage) SignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s/uploads/%s", s.BaseURL, objectName), nil
}

func (s *LocalStorage) Delete(ctx context.Context, objectName string) error {
	if err := os.Remove(filepath.Join(s.Dir, objectName)); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
