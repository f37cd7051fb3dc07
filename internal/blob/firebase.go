package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/novaframes/content-admin/internal/records/domain"
)

const (
	firebaseDownloadHost = "https://firebasestorage.googleapis.com"
	downloadTokenKey     = "firebaseStorageDownloadTokens"
)

// FirebaseUploader writes to the Cloud Storage bucket behind a Firebase app
// and returns the same token URLs the Firebase client SDKs hand out.
type FirebaseUploader struct {
	bucket *storage.BucketHandle
	name   string
}

func NewFirebaseUploader(ctx context.Context, app *firebase.App, bucketName string) (*FirebaseUploader, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("error opening bucket %s: %w", bucketName, err)
	}
	return &FirebaseUploader{bucket: bucket, name: bucketName}, nil
}

func (f *FirebaseUploader) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	token := uuid.New().String()

	w := f.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", path, err)
	}
	return FirebaseDownloadURL(f.name, path, token), nil
}

func (f *FirebaseUploader) Delete(ctx context.Context, rawURL string) error {
	path, err := FirebaseObjectPath(f.name, rawURL)
	if err != nil {
		return err
	}
	err = f.bucket.Object(path).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete object %s: %w", path, err)
	}
	return nil
}

func (f *FirebaseUploader) List(ctx context.Context, prefix string) ([]Object, error) {
	it := f.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, err)
		}
		token := attrs.Metadata[downloadTokenKey]
		// several comma-separated tokens may be attached; any of them works
		if i := strings.IndexByte(token, ','); i >= 0 {
			token = token[:i]
		}
		out = append(out, Object{
			Path:    attrs.Name,
			URL:     FirebaseDownloadURL(f.name, attrs.Name, token),
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}
	return out, nil
}

// FirebaseDownloadURL renders the non-expiring download URL for an object.
func FirebaseDownloadURL(bucket, path, token string) string {
	u := fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media", firebaseDownloadHost, bucket, url.PathEscape(path))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}

// FirebaseObjectPath recovers the object path from a download URL or a
// gs://bucket/path reference belonging to bucket.
func FirebaseObjectPath(bucket, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse blob url: %w", err)
	}

	if u.Scheme == "gs" {
		if u.Host != bucket {
			return "", fmt.Errorf("url %q does not belong to bucket %s", rawURL, bucket)
		}
		return strings.TrimPrefix(u.Path, "/"), nil
	}

	escaped := u.EscapedPath()
	marker := "/v0/b/" + bucket + "/o/"
	if !strings.HasPrefix(escaped, marker) {
		return "", fmt.Errorf("url %q does not belong to bucket %s", rawURL, bucket)
	}
	path, err := url.PathUnescape(strings.TrimPrefix(escaped, marker))
	if err != nil {
		return "", fmt.Errorf("decode object path: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("url %q has no object path", rawURL)
	}
	return path, nil
}
