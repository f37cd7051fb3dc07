package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/logger"
	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

// Collections is the caller-facing collection client: schema checks, idempotent
// deletes with blob cleanup, and the upload-then-write save flow.
type Collections struct {
	store repository.Store
	blobs blob.Uploader
	now   func() time.Time
}

// NewCollections creates a new Collections service
func NewCollections(store repository.Store, blobs blob.Uploader) *Collections {
	return &Collections{store: store, blobs: blobs, now: time.Now}
}

// ListAll fetches every record of a collection. Any failure is reported as
// domain.ErrRemoteUnavailable so callers can keep their stale snapshot.
func (s *Collections) ListAll(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	records, err := s.store.List(ctx, c)
	if err != nil {
		logger.For(ctx, "collections.list").Error("failed to list collection",
			zap.String("collection", string(c)), zap.Error(err))
		if errors.Is(err, domain.ErrRemoteUnavailable) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("list %s: %w: %w", c, domain.ErrRemoteUnavailable, err)
	}
	return records, nil
}

// Get returns one record with its identifier merged.
func (s *Collections) Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	return s.store.Get(ctx, c, id)
}

// Create validates body against the collection schema and writes it.
func (s *Collections) Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error) {
	return s.Save(ctx, SaveRequest{Collection: c, Body: body})
}

// Update merges body into an existing record.
func (s *Collections) Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error {
	_, err := s.Save(ctx, SaveRequest{Collection: c, ID: id, Body: body})
	return err
}

// Remove deletes a record. Deleting a record that is already gone succeeds.
// Blobs the record referenced are deleted afterwards; failures there are
// logged and never returned.
func (s *Collections) Remove(ctx context.Context, c domain.Collection, id string) error {
	schema, err := domain.Lookup(string(c))
	if err != nil {
		return err
	}

	existing, err := s.store.Get(ctx, c, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.store.Remove(ctx, c, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.deleteBlobs(ctx, schema.ImageURLs(existing))
	return nil
}

// FileUpload is one pending file in a save request.
type FileUpload struct {
	// Field is the schema image field the resulting URL is written to.
	Field string
	// Index addresses an element of a list or nested image field.
	// A negative index appends.
	Index       int
	Filename    string
	ContentType string
	Data        []byte
}

// SaveRequest creates a record when ID is empty and updates it otherwise.
type SaveRequest struct {
	Collection domain.Collection
	ID         string
	Body       domain.Record
	Files      []FileUpload
}

// Save uploads every pending file, folds the URLs into the body and writes
// the record. A failed upload aborts before any write and removes the files
// uploaded so far; a failed write removes every file uploaded for it. On
// update, blobs the record no longer references are deleted once the write
// has succeeded. It returns the record identifier.
func (s *Collections) Save(ctx context.Context, req SaveRequest) (string, error) {
	schema, err := domain.Lookup(string(req.Collection))
	if err != nil {
		return "", err
	}

	body := domain.Normalize(req.Body.Body())
	if err := schema.PreparePatch(body); err != nil {
		return "", err
	}

	var existing domain.Record
	if req.ID != "" {
		existing, err = s.store.Get(ctx, req.Collection, req.ID)
		if err != nil {
			return "", err
		}
	}

	targets, err := s.plan(schema, body, existing, req.Files)
	if err != nil {
		return "", err
	}

	if req.ID == "" {
		// required image fields may be satisfied by the pending uploads
		candidate := body.Clone()
		for _, t := range targets {
			t.fold(candidate, "pending")
		}
		if err := schema.Prepare(candidate); err != nil {
			return "", err
		}
	}

	uploaded, err := s.upload(ctx, schema, req.Files)
	if err != nil {
		return "", err
	}
	for i, t := range targets {
		t.fold(body, uploaded[i])
	}

	id := req.ID
	if id == "" {
		id, err = s.store.Create(ctx, req.Collection, body)
	} else {
		err = s.store.Update(ctx, req.Collection, id, body)
	}
	if err != nil {
		s.deleteBlobs(ctx, uploaded)
		return "", err
	}

	if existing != nil {
		merged := existing.Body()
		for k, v := range body {
			merged[k] = v
		}
		s.deleteBlobs(ctx, superseded(schema.ImageURLs(existing), schema.ImageURLs(merged)))
	}
	return id, nil
}

// upload stores every file, undoing the whole batch when one of them fails.
func (s *Collections) upload(ctx context.Context, schema domain.Schema, files []FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		path := blob.ObjectPath(schema.BlobPrefix, f.Filename, s.now())
		url, err := s.blobs.Upload(ctx, path, f.Data, f.ContentType)
		if err != nil {
			s.deleteBlobs(ctx, urls)
			if !errors.Is(err, domain.ErrUploadFailed) {
				err = fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Collections) deleteBlobs(ctx context.Context, urls []string) {
	for _, u := range urls {
		if err := s.blobs.Delete(ctx, u); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.For(ctx, "collections.blob_cleanup").Warn("failed to delete blob",
				zap.String("url", u), zap.Error(err))
		}
	}
}

// foldTarget is where one uploaded URL lands in the body.
type foldTarget struct {
	field domain.ImageField
	index int
}

// plan resolves every upload to its target before anything is uploaded, so
// an unknown field or a bad index costs no remote call.
func (s *Collections) plan(schema domain.Schema, body, existing domain.Record, files []FileUpload) ([]foldTarget, error) {
	if schema.BlobPrefix == "" && len(files) > 0 {
		return nil, fmt.Errorf("%w: %s has no image fields", domain.ErrInvalidRecord, schema.Collection)
	}

	targets := make([]foldTarget, 0, len(files))
	for _, f := range files {
		field, ok := schema.ImageField(f.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not an image field of %s", domain.ErrInvalidRecord, f.Field, schema.Collection)
		}
		if field.Kind != domain.ImageSingle {
			// list uploads extend the body's list, or the stored one when the body leaves it out
			if _, present := body[field.Field]; !present && existing != nil {
				body[field.Field] = existing.Clone()[field.Field]
			}
			items, _ := body[field.Field].([]any)
			if f.Index >= len(items) {
				return nil, fmt.Errorf("%w: %s[%d]", domain.ErrIndexOutOfRange, field.Field, f.Index)
			}
		}
		targets = append(targets, foldTarget{field: field, index: f.Index})
	}
	return targets, nil
}

func (t foldTarget) fold(body domain.Record, url string) {
	switch t.field.Kind {
	case domain.ImageSingle:
		body[t.field.Field] = url
	case domain.ImageList:
		items, _ := body[t.field.Field].([]any)
		if t.index < 0 {
			body[t.field.Field] = append(items, url)
			return
		}
		items[t.index] = url
	case domain.ImageNested:
		items, _ := body[t.field.Field].([]any)
		if t.index < 0 {
			body[t.field.Field] = append(items, map[string]any{t.field.SubField: url})
			return
		}
		item, ok := items[t.index].(map[string]any)
		if !ok {
			item = map[string]any{}
			items[t.index] = item
		}
		item[t.field.SubField] = url
	}
}

// superseded lists the URLs in before that after no longer references.
func superseded(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	var out []string
	for _, u := range before {
		if _, ok := keep[u]; !ok {
			out = append(out, u)
		}
	}
	return out
}
