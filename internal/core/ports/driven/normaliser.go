package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Normaliser transforms raw documents into domain documents.
// Each normaliser handles specific MIME types (e.g. Notion page JSON, Markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// SupportedConnectorTypes returns connector types for specialised handling.
	// Empty slice means all connectors.
	SupportedConnectorTypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Connector-specific normalisers return 90-100, generic MIME
	// normalisers 50-89 and fallbacks 1-9.
	Priority() int

	// Normalise transforms a raw document into a document.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking, analysis and tagging are left to the PostProcessor pipeline.
type NormaliseResult struct {
	// Document has Content and, where the format allows, Blocks populated.
	Document domain.Document
}
