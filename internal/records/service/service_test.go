package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestCollections() (*Collections, *repository.MemoryStore, *blob.MemoryUploader) {
	store := repository.NewMemoryStore()
	blobs := blob.NewMemoryUploader("test")
	svc := NewCollections(store, blobs)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, blobs
}

// countingStore records how many calls reached the driver.
type countingStore struct {
	repository.Store
	calls     atomic.Int32
	createErr error
	listErr   error
}

func (c *countingStore) List(ctx context.Context, col domain.Collection) ([]domain.Record, error) {
	c.calls.Add(1)
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.Store.List(ctx, col)
}

func (c *countingStore) Get(ctx context.Context, col domain.Collection, id string) (domain.Record, error) {
	c.calls.Add(1)
	return c.Store.Get(ctx, col, id)
}

func (c *countingStore) Create(ctx context.Context, col domain.Collection, body domain.Record) (string, error) {
	c.calls.Add(1)
	if c.createErr != nil {
		return "", c.createErr
	}
	return c.Store.Create(ctx, col, body)
}

// flakyUploader fails every upload after the first okUploads.
type flakyUploader struct {
	*blob.MemoryUploader
	okUploads int
	uploads   int
	deletes   int
}

func (f *flakyUploader) Upload(ctx context.Context, path string, data []byte, ct string) (string, error) {
	f.uploads++
	if f.uploads > f.okUploads {
		return "", errors.New("bucket unreachable")
	}
	return f.MemoryUploader.Upload(ctx, path, data, ct)
}

func (f *flakyUploader) Delete(ctx context.Context, url string) error {
	f.deletes++
	return f.MemoryUploader.Delete(ctx, url)
}

func png(name string) FileUpload {
	return FileUpload{Field: "image", Index: -1, Filename: name, ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
}

func TestCollections_FAQScenario(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestCollections()

	id, err := svc.Create(ctx, domain.FAQs, domain.Record{"question": " Q1 ", "answer": "A1"})
	require.NoError(t, err)

	list, err := svc.ListAll(ctx, domain.FAQs)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID())
	assert.Equal(t, "Q1", list[0].String("question"))

	require.NoError(t, svc.Update(ctx, domain.FAQs, id, domain.Record{"question": "Q2", "answer": "A1"}))
	list, err = svc.ListAll(ctx, domain.FAQs)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Q2", list[0].String("question"))

	require.NoError(t, svc.Remove(ctx, domain.FAQs, id))
	list, err = svc.ListAll(ctx, domain.FAQs)
	require.NoError(t, err)
	assert.Empty(t, list)

	// deleting again is a no-op
	assert.NoError(t, svc.Remove(ctx, domain.FAQs, id))
}

func TestCollections_UpdateMissing(t *testing.T) {
	svc, _, _ := newTestCollections()
	err := svc.Update(context.Background(), domain.FAQs, "missing", domain.Record{"question": "Q"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollections_ClientUploadScenario(t *testing.T) {
	ctx := context.Background()
	svc, store, blobs := newTestCollections()

	id, err := svc.Save(ctx, SaveRequest{
		Collection: domain.Clients,
		Body:       domain.Record{"name": "Acme", "review": "Great"},
		Files:      []FileUpload{png("logo.png")},
	})
	require.NoError(t, err)

	rec, err := store.Get(ctx, domain.Clients, id)
	require.NoError(t, err)
	assert.Regexp(t, `^memory://test/client_images/1700000000000_[0-9a-f]{8}_logo\.png$`, rec.String("image"))
	assert.True(t, blobs.Exists(rec.String("image")))
}

func TestCollections_UpdateReplacesImage(t *testing.T) {
	ctx := context.Background()
	svc, store, blobs := newTestCollections()

	id, err := svc.Save(ctx, SaveRequest{Collection: domain.TopBrands, Body: domain.Record{"brandName": "B"},
		Files: []FileUpload{{Field: "imageUrl", Index: -1, Filename: "old.png", Data: []byte("x")}}})
	require.NoError(t, err)
	old, err := store.Get(ctx, domain.TopBrands, id)
	require.NoError(t, err)
	oldURL := old.String("imageUrl")

	svc.now = func() time.Time { return fixedNow.Add(time.Second) }
	_, err = svc.Save(ctx, SaveRequest{Collection: domain.TopBrands, ID: id, Body: domain.Record{},
		Files: []FileUpload{{Field: "imageUrl", Index: -1, Filename: "new.png", Data: []byte("y")}}})
	require.NoError(t, err)

	updated, err := store.Get(ctx, domain.TopBrands, id)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.String("brandName"))
	assert.NotEqual(t, oldURL, updated.String("imageUrl"))
	assert.True(t, blobs.Exists(updated.String("imageUrl")))
	assert.False(t, blobs.Exists(oldURL))
}

func TestCollections_ProjectImagesAppendToStoredList(t *testing.T) {
	ctx := context.Background()
	svc, store, blobs := newTestCollections()

	id, err := store.Create(ctx, domain.Projects, domain.Record{"title": "P", "images": []any{"memory://test/projects/a.png"}})
	require.NoError(t, err)

	// same name, same clock tick
	_, err = svc.Save(ctx, SaveRequest{Collection: domain.Projects, ID: id, Body: domain.Record{},
		Files: []FileUpload{
			{Field: "images", Index: -1, Filename: "photo.png", Data: []byte("first")},
			{Field: "images", Index: -1, Filename: "photo.png", Data: []byte("second")},
		}})
	require.NoError(t, err)

	rec, err := store.Get(ctx, domain.Projects, id)
	require.NoError(t, err)
	images, ok := rec["images"].([]any)
	require.True(t, ok)
	require.Len(t, images, 3)
	assert.Equal(t, "memory://test/projects/a.png", images[0])
	assert.NotEqual(t, images[1], images[2])
	for _, u := range images[1:] {
		assert.Regexp(t, `^memory://test/projects/1700000000000_[0-9a-f]{8}_photo\.png$`, u)
		assert.True(t, blobs.Exists(u.(string)))
	}
	assert.Equal(t, 2, blobs.Len())
}

func TestCollections_UploadFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	blobs := &flakyUploader{MemoryUploader: blob.NewMemoryUploader("test"), okUploads: 1}
	svc := NewCollections(store, blobs)

	_, err := svc.Save(ctx, SaveRequest{
		Collection: domain.Projects,
		Body:       domain.Record{"title": "P"},
		Files: []FileUpload{
			{Field: "images", Index: -1, Filename: "1.png", Data: []byte("1")},
			{Field: "images", Index: -1, Filename: "2.png", Data: []byte("2")},
		},
	})
	require.ErrorIs(t, err, domain.ErrUploadFailed)

	list, err := store.List(ctx, domain.Projects)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, blobs.Len(), "the upload that succeeded is removed again")
}

func TestCollections_WriteFailureRemovesUploads(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: repository.NewMemoryStore(), createErr: fmt.Errorf("create: %w", domain.ErrWriteRejected)}
	blobs := blob.NewMemoryUploader("test")
	svc := NewCollections(store, blobs)

	_, err := svc.Save(ctx, SaveRequest{
		Collection: domain.Clients,
		Body:       domain.Record{"name": "Acme"},
		Files:      []FileUpload{png("logo.png")},
	})
	require.ErrorIs(t, err, domain.ErrWriteRejected)
	assert.Zero(t, blobs.Len())
}

func TestCollections_ValidationBeforeRemoteCalls(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: repository.NewMemoryStore()}
	blobs := blob.NewMemoryUploader("test")
	svc := NewCollections(store, blobs)

	_, err := svc.Create(ctx, domain.Packages, domain.Record{
		"name":  "Gold",
		"price": "100",
		"stats": []any{map[string]any{"icon": "Palette", "label": "x"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidIcon)

	_, err = svc.Save(ctx, SaveRequest{Collection: domain.Projects, Body: domain.Record{},
		Files: []FileUpload{{Field: "images", Index: -1, Filename: "a.png", Data: []byte("a")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = svc.Save(ctx, SaveRequest{Collection: domain.Services, Body: domain.Record{"name": "S", "portfolio": []any{}},
		Files: []FileUpload{{Field: "portfolio", Index: 2, Filename: "a.png", Data: []byte("a")}}})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)

	_, err = svc.Save(ctx, SaveRequest{Collection: domain.FAQs, Body: domain.Record{"question": "Q", "answer": "A"},
		Files: []FileUpload{png("x.png")}})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	assert.Zero(t, store.calls.Load())
	assert.Zero(t, blobs.Len())
}

func TestCollections_IconDefaultFilled(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestCollections()

	id, err := svc.Create(ctx, domain.Packages, domain.Record{
		"name":  "Gold",
		"price": "100",
		"stats": []any{map[string]any{"label": "x"}},
	})
	require.NoError(t, err)

	rec, err := store.Get(ctx, domain.Packages, id)
	require.NoError(t, err)
	stats := rec["stats"].([]any)
	assert.Equal(t, "Award", stats[0].(map[string]any)["icon"])
}

func TestCollections_RemoveDeletesBlobsBestEffort(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	blobs := &flakyUploader{MemoryUploader: blob.NewMemoryUploader("test"), okUploads: 10}
	svc := NewCollections(store, blobs)

	url, err := blobs.MemoryUploader.Upload(ctx, "portfolio/1_a.png", []byte("a"), "image/png")
	require.NoError(t, err)
	id, err := store.Create(ctx, domain.Services, domain.Record{
		"name": "S",
		"portfolio": []any{
			map[string]any{"imageUrl": url},
			map[string]any{"imageUrl": "https://elsewhere.example/x.png"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, domain.Services, id))
	assert.Equal(t, 2, blobs.deletes)
	assert.False(t, blobs.Exists(url))

	_, err = store.Get(ctx, domain.Services, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollections_ListAllFailure(t *testing.T) {
	store := &countingStore{Store: repository.NewMemoryStore(), listErr: errors.New("dial tcp: refused")}
	svc := NewCollections(store, blob.NewMemoryUploader("test"))

	_, err := svc.ListAll(context.Background(), domain.FAQs)
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.True(t, strings.Contains(err.Error(), "refused"))
}

func TestCollections_UnknownCollection(t *testing.T) {
	svc, _, _ := newTestCollections()
	_, err := svc.Create(context.Background(), "secrets", domain.Record{"a": "b"})
	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
}

func TestContent_LoadAndSave(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewContent(store)

	perf, err := domain.LookupContent("performance")
	require.NoError(t, err)

	doc, err := svc.Load(ctx, perf)
	require.NoError(t, err)
	assert.Equal(t, "content", doc.ID())
	assert.Equal(t, []any{}, doc["faq"])

	saved, err := svc.Save(ctx, perf, domain.Record{
		"hero":    map[string]any{"title": "Grow", "subtitle": "fast"},
		"metrics": []any{map[string]any{"label": "CTR"}},
	})
	require.NoError(t, err)
	metrics := saved["metrics"].([]any)
	assert.Equal(t, "MousePointer", metrics[0].(map[string]any)["icon"])

	// merge keeps fields the second save leaves out
	saved, err = svc.Save(ctx, perf, domain.Record{"faq": []any{map[string]any{"q": "a"}}})
	require.NoError(t, err)
	assert.Equal(t, "Grow", saved["hero"].(map[string]any)["title"])

	_, err = svc.Save(ctx, perf, domain.Record{"benefits": []any{map[string]any{"icon": "Palette"}}})
	assert.ErrorIs(t, err, domain.ErrInvalidIcon)
}

func TestContent_GraphicReplaces(t *testing.T) {
	ctx := context.Background()
	svc := NewContent(repository.NewMemoryStore())
	graphic, err := domain.LookupContent("graphic")
	require.NoError(t, err)

	_, err = svc.Save(ctx, graphic, domain.Record{"heroTitle": "T", "services": []any{}})
	require.NoError(t, err)
	saved, err := svc.Save(ctx, graphic, domain.Record{"heroSubtitle": "S"})
	require.NoError(t, err)

	// replaced document falls back to defaults for the dropped field
	assert.Equal(t, "", saved["heroTitle"])
	assert.Equal(t, "S", saved["heroSubtitle"])
}

func TestNested_PackageFAQs(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	n := NewNested(store)

	id, err := store.Create(ctx, domain.Packages, domain.Record{"name": "Gold", "price": "1"})
	require.NoError(t, err)
	target := RecordTarget(domain.MustSchema(domain.Packages), id)

	rec, err := n.Append(ctx, target, "faqs", map[string]any{"q": "1"})
	require.NoError(t, err)
	rec, err = n.Append(ctx, target, "faqs", map[string]any{"q": "2"})
	require.NoError(t, err)
	assert.Len(t, rec["faqs"], 2)

	rec, err = n.Replace(ctx, target, "faqs", 0, map[string]any{"q": "one"})
	require.NoError(t, err)
	assert.Equal(t, "one", rec["faqs"].([]any)[0].(map[string]any)["q"])

	rec, err = n.RemoveAt(ctx, target, "faqs", 0)
	require.NoError(t, err)
	require.Len(t, rec["faqs"], 1)
	assert.Equal(t, "2", rec["faqs"].([]any)[0].(map[string]any)["q"])

	_, err = n.RemoveAt(ctx, target, "faqs", 5)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = n.Replace(ctx, target, "faqs", -1, map[string]any{})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	_, err = n.Append(ctx, target, "reviews", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = n.Append(ctx, RecordTarget(domain.MustSchema(domain.Packages), "missing"), "faqs", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNested_BrandingServices(t *testing.T) {
	ctx := context.Background()
	n := NewNested(repository.NewMemoryStore())
	branding, err := domain.LookupContent("branding")
	require.NoError(t, err)
	target := ContentTarget(branding)

	rec, err := n.Append(ctx, target, "services", map[string]any{"title": "Logos"})
	require.NoError(t, err)
	services := rec["services"].([]any)
	require.Len(t, services, 1)
	assert.Equal(t, "Palette", services[0].(map[string]any)["icon"])

	_, err = n.Append(ctx, target, "services", map[string]any{"icon": "Eye"})
	assert.ErrorIs(t, err, domain.ErrInvalidIcon)
}

func TestContacts_MarkDiscussed(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestCollections()
	contacts := NewContacts(svc)

	id, err := store.Create(ctx, domain.Contact, domain.Record{"name": "N", "email": "n@example.com"})
	require.NoError(t, err)

	rec, err := store.Get(ctx, domain.Contact, id)
	require.NoError(t, err)
	assert.False(t, IsDiscussed(rec))

	require.NoError(t, contacts.MarkDiscussed(ctx, id))
	rec, err = store.Get(ctx, domain.Contact, id)
	require.NoError(t, err)
	assert.True(t, IsDiscussed(rec))

	assert.ErrorIs(t, contacts.MarkDiscussed(ctx, "missing"), domain.ErrNotFound)
}
