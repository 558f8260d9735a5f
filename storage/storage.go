// Package storage uploads avatar images and hands back public URLs.
package storage

import (
	"context"
	"errors"
)

// ErrUpload wraps every uploader failure so callers can report it as a
// collaborator error without retrying.
var ErrUpload = errors.New("upload failed")

// Uploader stores a local file somewhere public and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}
