package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/novaframes/content-admin/internal/auth"
	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/service"
	"github.com/novaframes/content-admin/internal/screen"
	"github.com/novaframes/content-admin/internal/search"
)

const HeaderSessionID = "X-Session-Id"

// Handler serves the admin API on top of per-session screens.
type Handler struct {
	screens   *screen.Registry
	content   *service.Content
	nested    *service.Nested
	contacts  *service.Contacts
	blobs     blob.Uploader
	maxUpload int64
	now       func() time.Time
}

type HandlerDeps struct {
	Collections *service.Collections
	Content     *service.Content
	Nested      *service.Nested
	Blobs       blob.Uploader
	MaxUpload   int64
}

func NewHandler(dep HandlerDeps) *Handler {
	return &Handler{
		screens:   screen.NewRegistry(dep.Collections),
		content:   dep.Content,
		nested:    dep.Nested,
		contacts:  service.NewContacts(dep.Collections),
		blobs:     dep.Blobs,
		maxUpload: dep.MaxUpload,
		now:       time.Now,
	}
}

// ListResponse is a filtered view of a screen snapshot.
type ListResponse struct {
	Collection domain.Collection `json:"collection"`
	Records    []domain.Record   `json:"records"`
	Total      int               `json:"total"`
	Phase      string            `json:"phase"`
	Stale      bool              `json:"stale"`
	Warning    string            `json:"warning,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	LoadedAt   time.Time         `json:"loaded_at"`
}

// MutationResponse carries the refreshed snapshot after a write.
type MutationResponse struct {
	ID       string          `json:"id,omitempty"`
	Snapshot screen.Snapshot `json:"snapshot"`
}

// session picks the screen owner: an explicit session header, else the
// authenticated admin, else the shared default.
func session(c *gin.Context) string {
	if s := strings.TrimSpace(c.GetHeader(HeaderSessionID)); s != "" {
		return s
	}
	if a := auth.Admin(c); a != "" {
		return a
	}
	return screen.DefaultSession
}

func (h *Handler) screenFor(c *gin.Context) (*screen.Screen, bool) {
	s, err := h.screens.Get(session(c), c.Param("collection"))
	if err != nil {
		writeError(c, "screen", err)
		return nil, false
	}
	return s, true
}

// ListRecords loads the collection and returns the filtered snapshot. When the
// store cannot be reached the last snapshot is served with a warning.
func (h *Handler) ListRecords(c *gin.Context) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	if err := s.Load(c.Request.Context()); err != nil && !errors.Is(err, domain.ErrRemoteUnavailable) {
		writeError(c, "collections.list", err)
		return
	}

	q := search.Query{Term: c.Query("q"), Category: c.Query("category")}
	if raw := c.Query("discussed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discussed must be a boolean"})
			return
		}
		q.Discussed = &v
	}

	snap := s.Snapshot()
	records := s.Filtered(q)
	resp := ListResponse{
		Collection: snap.Collection,
		Records:    records,
		Total:      len(records),
		Phase:      snap.Phase,
		Stale:      snap.Stale,
		Warning:    snap.Warning,
		LoadedAt:   snap.LoadedAt,
	}
	if snap.Collection == domain.Projects {
		resp.Categories = search.Categories(snap.Records)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetRecord(c *gin.Context) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	rec, err := s.Record(id)
	if errors.Is(err, domain.ErrNotFound) {
		if lerr := s.Load(c.Request.Context()); lerr != nil {
			writeError(c, "collections.get", lerr)
			return
		}
		rec, err = s.Record(id)
	}
	if err != nil {
		writeError(c, "collections.get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) CreateRecord(c *gin.Context) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	body, files, err := readPayload(c, h.maxUpload)
	if err != nil {
		writeError(c, "collections.create", err)
		return
	}
	if err := s.OpenCreate(); err != nil {
		writeError(c, "collections.create", err)
		return
	}

	id, err := s.Submit(c.Request.Context(), body, files)
	if err != nil {
		writeError(c, "collections.create", err)
		return
	}
	c.JSON(http.StatusCreated, MutationResponse{ID: id, Snapshot: s.Snapshot()})
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	body, files, err := readPayload(c, h.maxUpload)
	if err != nil {
		writeError(c, "collections.update", err)
		return
	}

	id := c.Param("id")
	if err := h.openEdit(c.Request.Context(), s, id); err != nil {
		writeError(c, "collections.update", err)
		return
	}

	if _, err := s.Submit(c.Request.Context(), body, files); err != nil {
		writeError(c, "collections.update", err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{ID: id, Snapshot: s.Snapshot()})
}

// openEdit opens the edit form, loading the collection first when the
// record is not in the snapshot yet.
func (h *Handler) openEdit(ctx context.Context, s *screen.Screen, id string) error {
	err := s.OpenEdit(id)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	return s.OpenEdit(id)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	if err := s.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "collections.delete", err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{Snapshot: s.Snapshot()})
}

func (h *Handler) AppendItem(c *gin.Context) {
	h.editSection(c, func(ctx context.Context, t service.Target, section string, item any) error {
		_, err := h.nested.Append(ctx, t, section, item)
		return err
	}, false)
}

func (h *Handler) ReplaceItem(c *gin.Context) {
	h.editSection(c, func(ctx context.Context, t service.Target, section string, item any) error {
		index, err := indexParam(c)
		if err != nil {
			return err
		}
		_, err = h.nested.Replace(ctx, t, section, index, item)
		return err
	}, false)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	h.editSection(c, func(ctx context.Context, t service.Target, section string, _ any) error {
		index, err := indexParam(c)
		if err != nil {
			return err
		}
		_, err = h.nested.RemoveAt(ctx, t, section, index)
		return err
	}, true)
}

type sectionEdit func(ctx context.Context, t service.Target, section string, item any) error

func (h *Handler) editSection(c *gin.Context, edit sectionEdit, noBody bool) {
	s, ok := h.screenFor(c)
	if !ok {
		return
	}

	var item any
	if !noBody {
		if err := c.ShouldBindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
			return
		}
	}

	schema, err := domain.Lookup(c.Param("collection"))
	if err != nil {
		writeError(c, "collections.section", err)
		return
	}
	target := service.RecordTarget(schema, c.Param("id"))

	err = s.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return edit(ctx, target, c.Param("section"), item)
	})
	if err != nil {
		writeError(c, "collections.section", err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{ID: c.Param("id"), Snapshot: s.Snapshot()})
}

func (h *Handler) MarkDiscussed(c *gin.Context) {
	s, err := h.screens.Get(session(c), string(domain.Contact))
	if err != nil {
		writeError(c, "contact.discussed", err)
		return
	}

	id := c.Param("id")
	err = s.Mutate(c.Request.Context(), func(ctx context.Context) error {
		return h.contacts.MarkDiscussed(ctx, id)
	})
	if err != nil {
		writeError(c, "contact.discussed", err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{ID: id, Snapshot: s.Snapshot()})
}

func indexParam(c *gin.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, domain.ErrIndexOutOfRange
	}
	return index, nil
}
