package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

// Target addresses the record whose nested arrays are edited.
type Target struct {
	Schema domain.Schema
	ID     string
	// content is set for singleton documents, which start from their
	// default shape and are written with Set.
	content *domain.ContentDoc
}

// RecordTarget addresses a record of a collection.
func RecordTarget(schema domain.Schema, id string) Target {
	return Target{Schema: schema, ID: id}
}

// ContentTarget addresses a singleton content document.
func ContentTarget(doc domain.ContentDoc) Target {
	return Target{Schema: doc.Schema(), ID: doc.ID, content: &doc}
}

// Nested edits array sub-fields by computing the whole next array and
// overwriting the field with it.
type Nested struct {
	store   repository.Store
	content *Content
}

func NewNested(store repository.Store) *Nested {
	return &Nested{store: store, content: NewContent(store)}
}

// Append adds item to the end of section.
func (n *Nested) Append(ctx context.Context, t Target, section string, item any) (domain.Record, error) {
	return n.apply(ctx, t, section, func(items []any) ([]any, error) {
		return append(items, item), nil
	})
}

// Replace swaps the element at index for item.
func (n *Nested) Replace(ctx context.Context, t Target, section string, index int, item any) (domain.Record, error) {
	return n.apply(ctx, t, section, func(items []any) ([]any, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("%w: %s[%d]", domain.ErrIndexOutOfRange, section, index)
		}
		items[index] = item
		return items, nil
	})
}

// RemoveAt drops the element at index.
func (n *Nested) RemoveAt(ctx context.Context, t Target, section string, index int) (domain.Record, error) {
	return n.apply(ctx, t, section, func(items []any) ([]any, error) {
		if index < 0 || index >= len(items) {
			return nil, fmt.Errorf("%w: %s[%d]", domain.ErrIndexOutOfRange, section, index)
		}
		return append(items[:index:index], items[index+1:]...), nil
	})
}

func (n *Nested) apply(ctx context.Context, t Target, section string, edit func([]any) ([]any, error)) (domain.Record, error) {
	if !t.Schema.HasSection(section) {
		return nil, fmt.Errorf("%w: %s has no section %q", domain.ErrInvalidRecord, t.Schema.Collection, section)
	}

	current, err := n.load(ctx, t)
	if err != nil {
		return nil, err
	}

	items, _ := current[section].([]any)
	next, err := edit(append([]any(nil), items...))
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []any{}
	}

	body := domain.Normalize(domain.Record{section: next})
	if err := domain.ApplyIcons(body, t.Schema.Icons); err != nil {
		return nil, err
	}

	if t.content != nil {
		full := current.Body()
		full[section] = body[section]
		if _, err := n.content.Save(ctx, *t.content, full); err != nil {
			return nil, err
		}
		return n.content.Load(ctx, *t.content)
	}

	if err := n.store.Update(ctx, t.Schema.Collection, t.ID, body); err != nil {
		return nil, err
	}
	return n.store.Get(ctx, t.Schema.Collection, t.ID)
}

func (n *Nested) load(ctx context.Context, t Target) (domain.Record, error) {
	if t.content != nil {
		return n.content.Load(ctx, *t.content)
	}
	rec, err := n.store.Get(ctx, t.Schema.Collection, t.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", t.Schema.Collection, t.ID, err)
	}
	return rec, err
}
