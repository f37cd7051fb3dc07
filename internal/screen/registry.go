package screen

import (
	"sync"

	"github.com/novaframes/content-admin/internal/records/domain"
)

const DefaultSession = "default"

type registryKey struct {
	session    string
	collection domain.Collection
}

// Registry keeps one screen per (session, collection). Nothing survives a restart.
type Registry struct {
	mu      sync.Mutex
	backend Backend
	opts    []Option
	screens map[registryKey]*Screen
}

func NewRegistry(backend Backend, opts ...Option) *Registry {
	return &Registry{backend: backend, opts: opts, screens: make(map[registryKey]*Screen)}
}

// Get returns the session's screen for a collection, creating it on first use.
func (r *Registry) Get(session, collection string) (*Screen, error) {
	schema, err := domain.Lookup(collection)
	if err != nil {
		return nil, err
	}
	if session == "" {
		session = DefaultSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{session: session, collection: schema.Collection}
	s, ok := r.screens[key]
	if !ok {
		s = New(schema, r.backend, r.opts...)
		r.screens[key] = s
	}
	return s, nil
}
