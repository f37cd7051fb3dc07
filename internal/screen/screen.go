// Package screen binds one collection's remote state to an admin screen: the
// loaded snapshot, the open form and the single in-flight mutation.
package screen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/service"
	"github.com/novaframes/content-admin/internal/search"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

type FormMode int

const (
	FormClosed FormMode = iota
	FormCreating
	FormEditing
)

func (m FormMode) String() string {
	switch m {
	case FormCreating:
		return "creating"
	case FormEditing:
		return "editing"
	default:
		return "closed"
	}
}

// Form is the record being created or edited. Values is a private copy.
type Form struct {
	Mode   FormMode      `json:"mode"`
	ID     string        `json:"id,omitempty"`
	Values domain.Record `json:"values,omitempty"`
}

// Backend is the collection client a screen drives.
type Backend interface {
	ListAll(ctx context.Context, c domain.Collection) ([]domain.Record, error)
	Save(ctx context.Context, req service.SaveRequest) (string, error)
	Remove(ctx context.Context, c domain.Collection, id string) error
}

// Snapshot is a copy of the screen state safe to hand out.
type Snapshot struct {
	Collection domain.Collection `json:"collection"`
	Phase      string            `json:"phase"`
	Records    []domain.Record   `json:"records"`
	Form       Form              `json:"form"`
	Stale      bool              `json:"stale"`
	Warning    string            `json:"warning,omitempty"`
	LoadedAt   time.Time         `json:"loaded_at"`
}

const staleWarning = "could not refresh; showing the last loaded data"

type Screen struct {
	mu        sync.Mutex
	schema    domain.Schema
	backend   Backend
	refresher Refresher
	now       func() time.Time

	// submitting and loads are tracked apart so a finishing load never
	// clears an in-flight mutation.
	submitting bool
	loads      int
	records  []domain.Record
	form     Form
	stale    bool
	loadedAt time.Time
}

type Option func(*Screen)

// WithRefresher replaces the post-mutation refresh strategy.
func WithRefresher(r Refresher) Option {
	return func(s *Screen) { s.refresher = r }
}

func New(schema domain.Schema, backend Backend, opts ...Option) *Screen {
	s := &Screen{
		schema:    schema,
		backend:   backend,
		refresher: FullRefresh{},
		now:       time.Now,
		records:   []domain.Record{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load fetches the whole collection. On failure the previous snapshot is kept
// and the error is returned for acknowledgement.
func (s *Screen) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()

	records, err := s.refresher.Refresh(ctx, s.backend, s.schema.Collection)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads--
	s.apply(records, err)
	return err
}

// OpenCreate opens an empty form.
func (s *Screen) OpenCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return domain.ErrBusy
	}
	s.form = Form{Mode: FormCreating, Values: domain.Record{}}
	return nil
}

// OpenEdit seeds the form from a copy of the snapshot record.
func (s *Screen) OpenEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return domain.ErrBusy
	}
	rec, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%s/%s: %w", s.schema.Collection, id, domain.ErrNotFound)
	}
	s.form = Form{Mode: FormEditing, ID: id, Values: rec.Body()}
	return nil
}

// Close discards the form.
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = Form{Mode: FormClosed}
}

// Submit saves the open form with body and pending files, then refreshes.
// It returns the record id. On failure the form stays open and the snapshot
// is left untouched.
func (s *Screen) Submit(ctx context.Context, body domain.Record, files []service.FileUpload) (string, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return "", domain.ErrBusy
	}
	if s.form.Mode == FormClosed {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: no form is open", domain.ErrInvalidRecord)
	}
	s.submitting = true
	req := service.SaveRequest{Collection: s.schema.Collection, ID: s.form.ID, Body: body, Files: files}
	s.mu.Unlock()

	id, err := s.backend.Save(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.submitting = false
		if body != nil {
			s.form.Values = body.Body()
		}
		s.mu.Unlock()
		return "", err
	}

	s.finish(ctx)
	return id, nil
}

// Delete removes a record, then refreshes.
func (s *Screen) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.submitting = true
	s.mu.Unlock()

	if err := s.backend.Remove(ctx, s.schema.Collection, id); err != nil {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		return err
	}

	s.finish(ctx)
	return nil
}

// Mutate runs fn as the screen's in-flight mutation and refreshes after it
// succeeds. It is used for edits that bypass the form.
func (s *Screen) Mutate(ctx context.Context, fn func(context.Context) error) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	s.submitting = true
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		return err
	}

	s.finish(ctx)
	return nil
}

// finish refreshes after a successful mutation and returns to Idle with the
// form closed. A failed refresh only marks the snapshot stale.
func (s *Screen) finish(ctx context.Context) {
	records, err := s.refresher.Refresh(ctx, s.backend, s.schema.Collection)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(records, err)
	s.submitting = false
	s.form = Form{Mode: FormClosed}
}

func (s *Screen) apply(records []domain.Record, err error) {
	if err != nil {
		s.stale = true
		return
	}
	if records == nil {
		records = []domain.Record{}
	}
	s.records = records
	s.stale = false
	s.loadedAt = s.now()
}

// Record returns a copy of one snapshot record.
func (s *Screen) Record(id string) (domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.find(id)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", s.schema.Collection, id, domain.ErrNotFound)
	}
	return rec.Clone(), nil
}

// Filtered searches the snapshot. Without explicit fields the collection's
// search fields are used.
func (s *Screen) Filtered(q search.Query) []domain.Record {
	if len(q.Fields) == 0 {
		q.Fields = s.schema.SearchFields
	}
	s.mu.Lock()
	records := cloneAll(s.records)
	s.mu.Unlock()
	return search.Filter(records, q)
}

// Snapshot copies the current state.
func (s *Screen) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Collection: s.schema.Collection,
		Phase:      s.phaseLocked().String(),
		Records:    cloneAll(s.records),
		Form:       Form{Mode: s.form.Mode, ID: s.form.ID, Values: s.form.Values.Clone()},
		Stale:      s.stale,
		LoadedAt:   s.loadedAt,
	}
	if s.stale {
		snap.Warning = staleWarning
	}
	return snap
}

func (s *Screen) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

func (s *Screen) phaseLocked() Phase {
	switch {
	case s.submitting:
		return Submitting
	case s.loads > 0:
		return Loading
	default:
		return Idle
	}
}

func (s *Screen) find(id string) (domain.Record, bool) {
	for _, r := range s.records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

func cloneAll(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
