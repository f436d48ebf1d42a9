package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary implements Store against the Cloudinary API.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds a client from a CLOUDINARY_URL-style connection
// string. Uploads land in folder.
func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader) (Asset, error) {
	result, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return Asset{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	return Asset{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

func (c *Cloudinary) Remove(ctx context.Context, publicID string) error {
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy %s: %w", publicID, err)
	}
	return nil
}

func (c *Cloudinary) RemoveMany(ctx context.Context, publicIDs []string) error {
	if len(publicIDs) == 0 {
		return nil
	}
	_, err := c.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		PublicIDs: api.CldAPIArray(publicIDs),
	})
	if err != nil {
		return fmt.Errorf("cloudinary delete assets: %w", err)
	}
	return nil
}
