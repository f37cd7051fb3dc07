package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/novaframes/content-admin/internal/records/domain"
)

// Store is the driver-level access to named collections. Records returned by
// List and Get carry their identifier under domain.IDKey; bodies passed to
// writes never do.
type Store interface {
	List(ctx context.Context, c domain.Collection) ([]domain.Record, error)
	Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error)
	Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error)
	// Update merges top-level fields into an existing record.
	Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error
	// Set writes a record under a fixed id, creating it when missing.
	Set(ctx context.Context, c domain.Collection, id string, body domain.Record, merge bool) error
	Remove(ctx context.Context, c domain.Collection, id string) error
	Ping(ctx context.Context) error
}

// encodeBody strips the identifier and serializes the body, rejecting
// payloads that cannot be represented as a document.
func encodeBody(body domain.Record) (domain.Record, []byte, error) {
	clean := body.Body()
	data, err := json.Marshal(clean)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrWriteRejected, err)
	}
	return clean, data, nil
}

func decodeBody(id string, data []byte) (domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}
	if rec == nil {
		rec = domain.Record{}
	}
	rec[domain.IDKey] = id
	return rec, nil
}

func mergeInto(dst, src domain.Record) domain.Record {
	if dst == nil {
		dst = domain.Record{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
