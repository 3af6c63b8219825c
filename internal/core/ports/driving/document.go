package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

// DocumentService manages synced documents.
type DocumentService interface {
	// List returns every document across sources.
	List(ctx context.Context) ([]domain.Document, error)

	// ListBySource returns all documents for a source.
	ListBySource(ctx context.Context, sourceID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the normalised content of a document.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns metadata for display.
	GetDetails(ctx context.Context, documentID string) (*DocumentDetails, error)

	// Tree builds the page hierarchy for a source. Empty sourceID uses all documents.
	Tree(ctx context.Context, sourceID string) (*hierarchy.Hierarchy, error)

	// Outline returns the heading structure of a document.
	Outline(ctx context.Context, documentID string) ([]*hierarchy.Section, error)

	// Tags returns a document's tags, with ancestor tags when inherited is true.
	Tags(ctx context.Context, documentID string, inherited bool) ([]domain.Tag, error)

	// FindByTag returns documents carrying a tag.
	FindByTag(ctx context.Context, tag string) ([]domain.Document, error)

	// ListTags returns all tags with document counts.
	ListTags(ctx context.Context) ([]domain.TagCount, error)

	// Analyze re-runs text analysis on a stored document and persists it.
	Analyze(ctx context.Context, documentID string) (*domain.TextAnalysis, error)

	// Retag re-runs the tagger on a stored document and persists the tags.
	Retag(ctx context.Context, documentID string) ([]domain.Tag, error)
}

// DocumentDetails provides a display view of document metadata.
type DocumentDetails struct {
	ID         string
	SourceID   string
	SourceName string
	SourceType string
	Title      string
	URI        string
	URL        string

	// Path is the titles from the root page down to this document.
	Path []string

	ChunkCount int
	BlockCount int
	TagCount   int

	CreatedAt time.Time
	UpdatedAt time.Time

	// Metadata contains flattened key-value pairs for display.
	Metadata map[string]string
}
