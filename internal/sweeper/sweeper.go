// Package sweeper reconciles blob storage with the records: blobs nothing
// references any more are deleted once they are older than a grace period.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/novaframes/content-admin/internal/blob"
	"github.com/novaframes/content-admin/internal/metrics"
	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
)

// Report summarizes one sweep.
type Report struct {
	Scanned int      `json:"scanned"`
	Kept    int      `json:"kept"`
	Young   int      `json:"young"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Orphans []string `json:"orphans"`
}

type Sweeper struct {
	store repository.Store
	blobs blob.Uploader
	grace time.Duration
	now   func() time.Time
	log   *zap.Logger
}

func New(store repository.Store, blobs blob.Uploader, grace time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{store: store, blobs: blobs, grace: grace, now: time.Now, log: log}
}

// Run deletes orphaned blobs under every collection prefix. With dryRun the
// orphans are only reported. Any failure to read the records aborts the
// sweep before anything is deleted.
func (s *Sweeper) Run(ctx context.Context, dryRun bool) (Report, error) {
	var report Report

	refs, err := s.references(ctx)
	if err != nil {
		return report, err
	}

	cutoff := s.now().Add(-s.grace)
	for _, schema := range domain.AllSchemas() {
		if schema.BlobPrefix == "" {
			continue
		}
		objects, err := s.blobs.List(ctx, schema.BlobPrefix+"/")
		if err != nil {
			return report, fmt.Errorf("list blobs under %s: %w", schema.BlobPrefix, err)
		}

		for _, obj := range objects {
			report.Scanned++
			if refs.has(obj) {
				report.Kept++
				continue
			}
			if obj.Updated.After(cutoff) {
				// may belong to a save that has not written its record yet
				report.Young++
				continue
			}
			report.Orphans = append(report.Orphans, obj.URL)
			if dryRun {
				continue
			}
			if err := s.blobs.Delete(ctx, obj.URL); err != nil && !errors.Is(err, domain.ErrNotFound) {
				report.Failed++
				s.log.Warn("failed to delete orphaned blob", zap.String("path", obj.Path), zap.Error(err))
				continue
			}
			report.Deleted++
		}
	}

	if !dryRun {
		metrics.ObserveSweep(report.Deleted)
	}
	s.log.Info("blob sweep finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("kept", report.Kept),
		zap.Int("young", report.Young),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// references collects every string held anywhere in any record or content
// document, so a URL outside the declared image fields still counts.
func (s *Sweeper) references(ctx context.Context) (refSet, error) {
	refs := refSet{exact: make(map[string]struct{})}

	for _, schema := range domain.AllSchemas() {
		records, err := s.store.List(ctx, schema.Collection)
		if err != nil {
			return refs, fmt.Errorf("list %s: %w", schema.Collection, err)
		}
		for _, r := range records {
			refs.collect(map[string]any(r))
		}
	}

	for _, doc := range domain.AllContentDocs() {
		rec, err := s.store.Get(ctx, doc.Collection, doc.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return refs, fmt.Errorf("get %s/%s: %w", doc.Collection, doc.ID, err)
		}
		refs.collect(map[string]any(rec))
	}
	return refs, nil
}

type refSet struct {
	exact map[string]struct{}
	all   []string
}

func (r *refSet) collect(v any) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return
		}
		if _, ok := r.exact[t]; !ok {
			r.exact[t] = struct{}{}
			r.all = append(r.all, t)
		}
	case map[string]any:
		for _, e := range t {
			r.collect(e)
		}
	case domain.Record:
		r.collect(map[string]any(t))
	case []any:
		for _, e := range t {
			r.collect(e)
		}
	}
}

// has matches on the URL itself, then on the object path in raw or escaped
// form, since download tokens may differ between listing and record.
func (r *refSet) has(obj blob.Object) bool {
	if _, ok := r.exact[obj.URL]; ok {
		return true
	}
	escaped := url.PathEscape(obj.Path)
	for _, ref := range r.all {
		if strings.Contains(ref, obj.Path) || strings.Contains(ref, escaped) {
			return true
		}
	}
	return false
}
