package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local stores avatars on disk under Dir and serves them from BaseURL. It is
// the development fallback when no Cloudinary credentials are configured;
// main mounts Dir as a static route.
type Local struct {
	Dir     string
	BaseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: baseURL}, nil
}

// Upload copies the file into Dir under a fresh name and returns its URL.
func (l *Local) Upload(_ context.Context, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(localPath)
	dst, err := os.Create(filepath.Join(l.Dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return l.BaseURL + "/" + name, nil
}
