package screen

import (
	"context"

	"github.com/novaframes/content-admin/internal/records/domain"
)

// Refresher decides how a screen re-syncs after a mutation.
type Refresher interface {
	Refresh(ctx context.Context, b Backend, c domain.Collection) ([]domain.Record, error)
}

// FullRefresh re-lists the whole collection.
type FullRefresh struct{}

func (FullRefresh) Refresh(ctx context.Context, b Backend, c domain.Collection) ([]domain.Record, error) {
	return b.ListAll(ctx, c)
}
