package service

import (
	"context"
	"errors"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

// Content loads and saves the singleton documents behind the themed landing pages.
type Content struct {
	store repository.Store
}

func NewContent(store repository.Store) *Content {
	return &Content{store: store}
}

// Load returns the stored document, with the default shape filling in any
// top-level field it lacks. A document that does not exist yet is not an error.
func (s *Content) Load(ctx context.Context, doc domain.ContentDoc) (domain.Record, error) {
	rec, err := s.store.Get(ctx, doc.Collection, doc.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WithID(doc.Defaults(), doc.ID), nil
	}
	if err != nil {
		return nil, err
	}

	for k, v := range doc.Defaults() {
		if _, ok := rec[k]; !ok {
			rec[k] = v
		}
	}
	return rec, nil
}

// Save validates icons and writes the whole document, merging for documents
// configured to merge and replacing otherwise. It returns the stored result.
func (s *Content) Save(ctx context.Context, doc domain.ContentDoc, body domain.Record) (domain.Record, error) {
	clean := domain.Normalize(body.Body())
	if err := domain.ApplyIcons(clean, doc.Icons); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, doc.Collection, doc.ID, clean, doc.Merge); err != nil {
		return nil, err
	}
	return s.Load(ctx, doc)
}
