package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Cloudinary uploads avatars to a Cloudinary account configured via a
// CLOUDINARY_URL-style credential string.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary parses the credential URL and prepares the client.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary credentials: %w", err)
	}
	return &Cloudinary{cld: cld, folder: "avatars"}, nil
}

// Upload pushes the local file under a fresh public id and returns the
// served HTTPS URL.
func (c *Cloudinary) Upload(ctx context.Context, localPath string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	// The SDK reports API-level rejections in the body, not as an error.
	if resp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", ErrUpload, resp.Error.Message)
	}
	return resp.SecureURL, nil
}
