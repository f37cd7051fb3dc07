package blob

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/novaframes/content-admin/internal/records/domain"
)

type memObject struct {
	data        []byte
	contentType string
	updated     time.Time
}

// MemoryUploader keeps blobs in process memory under memory://{bucket}/{path}.
type MemoryUploader struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memObject
	now     func() time.Time
}

func NewMemoryUploader(bucket string) *MemoryUploader {
	if bucket == "" {
		bucket = "local"
	}
	return &MemoryUploader{bucket: bucket, objects: make(map[string]memObject), now: time.Now}
}

func (m *MemoryUploader) Upload(_ context.Context, path string, data []byte, contentType string) (string, error) {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memObject{data: buf, contentType: contentType, updated: m.now()}
	return m.url(path), nil
}

func (m *MemoryUploader) Delete(_ context.Context, url string) error {
	path, err := m.pathOf(url)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return domain.ErrNotFound
	}
	delete(m.objects, path)
	return nil
}

func (m *MemoryUploader) List(_ context.Context, prefix string) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Object
	for path, obj := range m.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, Object{Path: path, URL: m.url(path), Size: int64(len(obj.data)), Updated: obj.updated})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Exists reports whether the blob behind url is still stored.
func (m *MemoryUploader) Exists(url string) bool {
	path, err := m.pathOf(url)
	if err != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok
}

// Len is the number of stored blobs.
func (m *MemoryUploader) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// SetClock replaces the time source used to stamp uploads.
func (m *MemoryUploader) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryUploader) url(path string) string {
	return fmt.Sprintf("memory://%s/%s", m.bucket, path)
}

func (m *MemoryUploader) pathOf(url string) (string, error) {
	prefix := fmt.Sprintf("memory://%s/", m.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("url %q does not belong to bucket %s", url, m.bucket)
	}
	return strings.TrimPrefix(url, prefix), nil
}
