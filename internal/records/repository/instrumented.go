package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/novaframes/content-admin/internal/logger"
	"github.com/novaframes/content-admin/internal/metrics"
	"github.com/novaframes/content-admin/internal/records/domain"
)

// Instrumented decorates a Store with prometheus timings and failure logs.
type Instrumented struct {
	next Store
}

func NewInstrumented(next Store) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) List(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	started := time.Now()
	out, err := s.next.List(ctx, c)
	s.observe(ctx, c, "list", "", started, err)
	return out, err
}

func (s *Instrumented) Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	started := time.Now()
	out, err := s.next.Get(ctx, c, id)
	s.observe(ctx, c, "get", id, started, err)
	return out, err
}

func (s *Instrumented) Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error) {
	started := time.Now()
	id, err := s.next.Create(ctx, c, body)
	s.observe(ctx, c, "create", id, started, err)
	return id, err
}

func (s *Instrumented) Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error {
	started := time.Now()
	err := s.next.Update(ctx, c, id, body)
	s.observe(ctx, c, "update", id, started, err)
	return err
}

func (s *Instrumented) Set(ctx context.Context, c domain.Collection, id string, body domain.Record, merge bool) error {
	started := time.Now()
	err := s.next.Set(ctx, c, id, body, merge)
	s.observe(ctx, c, "set", id, started, err)
	return err
}

func (s *Instrumented) Remove(ctx context.Context, c domain.Collection, id string) error {
	started := time.Now()
	err := s.next.Remove(ctx, c, id)
	s.observe(ctx, c, "remove", id, started, err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Instrumented) observe(ctx context.Context, c domain.Collection, op, id string, started time.Time, err error) {
	metrics.ObserveStore(string(c), op, started, err)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}
	logger.For(ctx, "store."+op).Warn("store operation failed",
		zap.String("collection", string(c)),
		zap.String("id", id),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(err),
	)
}
