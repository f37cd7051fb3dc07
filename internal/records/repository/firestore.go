package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/novaframes/content-admin/internal/records/domain"
)

// FirestoreStore maps collections and records one-to-one onto Firestore
// collections and documents.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) List(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	snaps, err := s.client.Collection(string(c)).Documents(ctx).GetAll()
	if err != nil {
		return nil, firestoreError("list documents", err)
	}

	out := make([]domain.Record, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, domain.WithID(domain.Normalize(snap.Data()), snap.Ref.ID))
	}
	return out, nil
}

func (s *FirestoreStore) Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	snap, err := s.client.Collection(string(c)).Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreError("get document", err)
	}
	return domain.WithID(domain.Normalize(snap.Data()), snap.Ref.ID), nil
}

func (s *FirestoreStore) Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error) {
	clean, _, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	ref, _, err := s.client.Collection(string(c)).Add(ctx, map[string]any(domain.Normalize(clean)))
	if err != nil {
		return "", firestoreError("add document", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error {
	clean, _, err := encodeBody(body)
	if err != nil {
		return err
	}

	ref := s.client.Collection(string(c)).Doc(id)
	if len(clean) == 0 {
		// Firestore refuses an update without paths; only existence is left to check.
		_, err := ref.Get(ctx)
		return firestoreError("update document", err)
	}

	updates := make([]firestore.Update, 0, len(clean))
	for k, v := range domain.Normalize(clean) {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		return firestoreError("update document", err)
	}
	return nil
}

func (s *FirestoreStore) Set(ctx context.Context, c domain.Collection, id string, body domain.Record, merge bool) error {
	clean, _, err := encodeBody(body)
	if err != nil {
		return err
	}

	ref := s.client.Collection(string(c)).Doc(id)
	data := map[string]any(domain.Normalize(clean))

	if !merge || len(data) == 0 {
		if merge {
			if _, err := ref.Get(ctx); err == nil {
				return nil
			} else if status.Code(err) != codes.NotFound {
				return firestoreError("set document", err)
			}
		}
		if _, err := ref.Set(ctx, data); err != nil {
			return firestoreError("set document", err)
		}
		return nil
	}

	// Top-level merge: listed fields are replaced whole, others are kept.
	paths := make([]firestore.FieldPath, 0, len(data))
	for k := range data {
		paths = append(paths, firestore.FieldPath{k})
	}
	if _, err := ref.Set(ctx, data, firestore.Merge(paths...)); err != nil {
		return firestoreError("merge document", err)
	}
	return nil
}

func (s *FirestoreStore) Remove(ctx context.Context, c domain.Collection, id string) error {
	_, err := s.client.Collection(string(c)).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return firestoreError("delete document", err)
	}
	return nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return firestoreError("firestore ping", err)
	}
	return nil
}

// firestoreError maps gRPC status codes onto the store sentinels.
func firestoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return domain.ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteUnavailable, err)
	case codes.InvalidArgument, codes.FailedPrecondition, codes.PermissionDenied:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteRejected, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
