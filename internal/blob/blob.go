// Package blob stores uploaded images and hands back the public URL that
// records keep in their image fields.
package blob

import (
	"context"
	"time"
)

// Object is one stored blob as seen by a listing.
type Object struct {
	Path    string
	URL     string
	Size    int64
	Updated time.Time
}

// Uploader is the blob storage surface the rest of the service depends on.
type Uploader interface {
	// Upload stores data at path and returns a public URL for it.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete removes the blob a URL previously returned by Upload points at.
	Delete(ctx context.Context, url string) error
	List(ctx context.Context, prefix string) ([]Object, error)
}
