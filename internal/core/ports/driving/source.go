package driving

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// SourceService manages source configurations.
type SourceService interface {
	// Add creates a new source configuration. An empty ID is generated.
	Add(ctx context.Context, source domain.Source) (*domain.Source, error)

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Update modifies an existing source configuration.
	Update(ctx context.Context, source domain.Source) error

	// Remove deletes a source with its documents, sync state and credentials.
	Remove(ctx context.Context, id string) error

	// ValidateConfig validates source configuration for a connector type.
	ValidateConfig(ctx context.Context, connectorType string, config map[string]string) error
}

// AuthService stores and inspects source credentials.
type AuthService interface {
	// SetToken stores an integration token for a source.
	SetToken(ctx context.Context, sourceID, token string) error

	// OAuthURL returns the authorisation URL for the configured public integration.
	OAuthURL(state string) (string, error)

	// ExchangeCode completes OAuth and stores the tokens for a source.
	ExchangeCode(ctx context.Context, sourceID, code string) error

	// Status reports the auth method and workspace of a source.
	Status(ctx context.Context, sourceID string) (domain.AuthMethod, string, error)
}
