package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// CredentialsStore keeps the Notion token of a source, either an
// integration secret or an OAuth access token.
type CredentialsStore interface {
	// Save upserts by ID.
	Save(ctx context.Context, creds domain.Credentials) error
	Get(ctx context.Context, id string) (*domain.Credentials, error)

	// GetBySourceID returns domain.ErrNotFound when the source has no
	// stored token.
	GetBySourceID(ctx context.Context, sourceID string) (*domain.Credentials, error)
	Delete(ctx context.Context, id string) error
}
