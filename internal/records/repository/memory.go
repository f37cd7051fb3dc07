package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/novaframes/content-admin/internal/records/domain"
)

// MemoryStore keeps collections in process memory. Listing returns records in
// insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[domain.Collection]map[string]domain.Record
	order map[domain.Collection][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[domain.Collection]map[string]domain.Record),
		order: make(map[domain.Collection][]string),
	}
}

func (s *MemoryStore) List(_ context.Context, c domain.Collection) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Record, 0, len(s.order[c]))
	for _, id := range s.order[c] {
		out = append(out, domain.WithID(s.data[c][id], id))
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, c domain.Collection, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[c][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return domain.WithID(rec, id), nil
}

func (s *MemoryStore) Create(_ context.Context, c domain.Collection, body domain.Record) (string, error) {
	clean, _, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.put(c, id, domain.Normalize(clean))
	return id, nil
}

func (s *MemoryStore) Update(_ context.Context, c domain.Collection, id string, body domain.Record) error {
	clean, _, err := encodeBody(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[c][id]
	if !ok {
		return domain.ErrNotFound
	}
	s.data[c][id] = mergeInto(existing, domain.Normalize(clean))
	return nil
}

func (s *MemoryStore) Set(_ context.Context, c domain.Collection, id string, body domain.Record, merge bool) error {
	clean, _, err := encodeBody(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.Normalize(clean)
	if existing, ok := s.data[c][id]; ok && merge {
		next = mergeInto(existing, next)
	}
	s.put(c, id, next)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, c domain.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[c][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.data[c], id)
	ids := s.order[c]
	for i, v := range ids {
		if v == id {
			s.order[c] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) put(c domain.Collection, id string, rec domain.Record) {
	if s.data[c] == nil {
		s.data[c] = make(map[string]domain.Record)
	}
	if _, exists := s.data[c][id]; !exists {
		s.order[c] = append(s.order[c], id)
	}
	s.data[c][id] = rec
}
