package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// SyncStateStore keeps the incremental sync cursor of each source.
// Get returns domain.ErrNotFound before the first completed sync.
type SyncStateStore interface {
	Save(ctx context.Context, state domain.SyncState) error
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Delete(ctx context.Context, sourceID string) error
}
