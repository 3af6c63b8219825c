package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// SourceStore keeps the configured Notion workspaces. Get returns
// domain.ErrNotFound for an unknown ID.
type SourceStore interface {
	Save(ctx context.Context, source domain.Source) error
	Get(ctx context.Context, id string) (*domain.Source, error)
	List(ctx context.Context) ([]domain.Source, error)
	Delete(ctx context.Context, id string) error
}
