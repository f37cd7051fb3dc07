package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

var (
	old   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later = old.Add(48 * time.Hour)
)

func upload(t *testing.T, blobs *blob.MemoryUploader, path string) string {
	t.Helper()
	u, err := blobs.Upload(context.Background(), path, []byte("x"), "image/png")
	require.NoError(t, err)
	return u
}

func TestSweeper_Run(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	blobs := blob.NewMemoryUploader("test")
	blobs.SetClock(func() time.Time { return old })

	used := upload(t, blobs, "client_images/1_used.png")
	inContent := upload(t, blobs, "portfolio/1_branding.png")
	orphan := upload(t, blobs, "brands/1_orphan.png")

	blobs.SetClock(func() time.Time { return later.Add(-time.Minute) })
	young := upload(t, blobs, "projects/2_young.png")

	_, err := store.Create(ctx, domain.Clients, domain.Record{"name": "Acme", "image": used})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "branding", "brandingData", domain.Record{
		"hero": map[string]any{"background": inContent},
	}, false))

	s := New(store, blobs, time.Hour, nil)
	s.now = func() time.Time { return later }

	report, err := s.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, 1, report.Young)
	assert.Equal(t, []string{orphan}, report.Orphans)
	assert.Zero(t, report.Deleted)
	assert.True(t, blobs.Exists(orphan), "dry run deletes nothing")

	report, err = s.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)
	assert.False(t, blobs.Exists(orphan))
	assert.True(t, blobs.Exists(used))
	assert.True(t, blobs.Exists(inContent))
	assert.True(t, blobs.Exists(young))
}

func TestSweeper_MatchesByEscapedPath(t *testing.T) {
	refs := refSet{exact: map[string]struct{}{}}
	refs.collect(map[string]any{"image": blob.FirebaseDownloadURL("b", "client_images/1_a.png", "tok-1")})

	obj := blob.Object{Path: "client_images/1_a.png", URL: blob.FirebaseDownloadURL("b", "client_images/1_a.png", "tok-2")}
	assert.True(t, refs.has(obj))
	assert.False(t, refs.has(blob.Object{Path: "client_images/1_b.png", URL: "x"}))
}

type brokenStore struct{ repository.Store }

func (brokenStore) List(context.Context, domain.Collection) ([]domain.Record, error) {
	return nil, domain.ErrRemoteUnavailable
}

func TestSweeper_AbortsWhenRecordsUnreadable(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryUploader("test")
	blobs.SetClock(func() time.Time { return old })
	orphan := upload(t, blobs, "brands/1_orphan.png")

	s := New(brokenStore{repository.NewMemoryStore()}, blobs, time.Hour, nil)
	_, err := s.Run(ctx, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
	assert.True(t, blobs.Exists(orphan))
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(New(repository.NewMemoryStore(), blob.NewMemoryUploader("test"), time.Hour, nil), nil)
	assert.Error(t, s.Start("not a schedule"))

	require.NoError(t, s.Start("0 0 3 * * *"))
	<-s.Stop().Done()
}
