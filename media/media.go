// Package media abstracts the remote image host. Uploads return an Asset
// whose PublicID addresses the stored file for later deletion. Callers
// treat deletions as best-effort; the host is an independent system with
// its own failure modes.
package media

import (
	"context"
	"io"
)

// Asset is an uploaded image on the remote host.
type Asset struct {
	URL      string
	PublicID string
}

type Store interface {
	Upload(ctx context.Context, file io.Reader) (Asset, error)
	Remove(ctx context.Context, publicID string) error
	RemoveMany(ctx context.Context, publicIDs []string) error
}
