package driving

import "github.com/custodia-labs/notion-nlp/internal/core/domain"

// ConnectorRegistry describes the available connector types.
type ConnectorRegistry interface {
	// List returns all connector types.
	List() []domain.ConnectorType

	// Get returns a connector type by ID.
	Get(id string) (*domain.ConnectorType, error)

	// ResolveWebURL converts a document URI into a browser URL for the
	// given connector type. Returns "" when it cannot be resolved.
	ResolveWebURL(connectorType, uri string, metadata map[string]any) string
}
