package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// DocumentStore persists documents, their chunks and their tags.
// Blocks and analysis are stored with the document.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks replaces the chunks of the documents they belong to.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document with its chunks and tags.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns documents for a source. Empty sourceID lists all.
	ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error)

	// SaveTags replaces the tags of a document.
	SaveTags(ctx context.Context, documentID string, tags []domain.Tag) error

	// GetTags returns the tags of a document ordered by confidence.
	GetTags(ctx context.Context, documentID string) ([]domain.Tag, error)

	// FindByTag returns documents carrying the tag slug.
	FindByTag(ctx context.Context, slug string) ([]domain.Document, error)

	// ListTags returns every tag with its document count.
	ListTags(ctx context.Context) ([]domain.TagCount, error)
}
