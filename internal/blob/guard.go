package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/novaframes/content-admin/internal/metrics"
	"github.com/novaframes/content-admin/internal/records/domain"
)

// Guarded rejects payloads a driver should never see and records upload
// metrics. Every upload error it returns wraps domain.ErrUploadFailed.
type Guarded struct {
	next     Uploader
	driver   string
	maxBytes int64
}

func NewGuarded(next Uploader, driver string, maxBytes int64) *Guarded {
	return &Guarded{next: next, driver: driver, maxBytes: maxBytes}
}

func (g *Guarded) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	contentType, err := g.check(data, contentType)
	if err == nil {
		var url string
		url, err = g.next.Upload(ctx, path, data, contentType)
		if err == nil {
			metrics.ObserveBlob(g.driver, "upload", len(data), nil)
			return url, nil
		}
		if !errors.Is(err, domain.ErrUploadFailed) {
			err = fmt.Errorf("%w: %s: %w", domain.ErrUploadFailed, path, err)
		}
	}
	metrics.ObserveBlob(g.driver, "upload", len(data), err)
	return "", err
}

func (g *Guarded) Delete(ctx context.Context, url string) error {
	err := g.next.Delete(ctx, url)
	metrics.ObserveBlob(g.driver, "delete", 0, err)
	return err
}

func (g *Guarded) List(ctx context.Context, prefix string) ([]Object, error) {
	return g.next.List(ctx, prefix)
}

// check validates the payload and returns the effective content type.
func (g *Guarded) check(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", domain.ErrUploadFailed)
	}
	if g.maxBytes > 0 && int64(len(data)) > g.maxBytes {
		return "", fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", domain.ErrUploadFailed, len(data), g.maxBytes)
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", fmt.Errorf("%w: content type %q is not an image", domain.ErrUploadFailed, contentType)
	}
	return contentType, nil
}
