package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
	"github.com/custodia-labs/notion-nlp/internal/logger"
	"github.com/custodia-labs/notion-nlp/internal/tagging"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// TextAnalyzer produces the text analysis of a document body.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*domain.TextAnalysis, error)
}

// DocumentTagger computes and inherits document tags.
type DocumentTagger interface {
	Tag(ctx context.Context, doc *domain.Document) ([]domain.Tag, error)
	Inherit(own []domain.Tag, ancestors [][]domain.Tag) []domain.Tag
}

// maxAncestors bounds parent walks over stored documents.
const maxAncestors = 64

// DocumentService manages synced documents.
type DocumentService struct {
	docStore          driven.DocumentStore
	sourceStore       driven.SourceStore
	connectorRegistry driving.ConnectorRegistry
	analyzer          TextAnalyzer
	tagger            DocumentTagger
}

// NewDocumentService creates a new document service. analyzer and tagger
// may be nil, which disables Analyze, Retag and tag inheritance.
func NewDocumentService(
	docStore driven.DocumentStore,
	sourceStore driven.SourceStore,
	connectorRegistry driving.ConnectorRegistry,
	analyzer TextAnalyzer,
	tagger DocumentTagger,
) *DocumentService {
	return &DocumentService{
		docStore:          docStore,
		sourceStore:       sourceStore,
		connectorRegistry: connectorRegistry,
		analyzer:          analyzer,
		tagger:            tagger,
	}
}

// List returns every document across sources.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.ListBySource(ctx, "")
}

// ListBySource returns all documents for a source.
func (s *DocumentService) ListBySource(ctx context.Context, sourceID string) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.ListDocuments(ctx, sourceID)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// GetContent returns the normalised Markdown of a document. Documents saved
// without content are rebuilt from their chunks.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.Content != "" {
		return doc.Content, nil
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i := range chunks {
		parts[i] = chunks[i].Content
	}
	return strings.Join(parts, "\n"), nil
}

// GetDetails returns metadata for display.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var sourceName, sourceType string
	if s.sourceStore != nil {
		if source, err := s.sourceStore.Get(ctx, doc.SourceID); err == nil && source != nil {
			sourceName = source.Name
			sourceType = source.Type
		}
	}

	chunkCount := 0
	if chunks, err := s.docStore.GetChunks(ctx, documentID); err == nil {
		chunkCount = len(chunks)
	}

	ancestors, err := s.ancestors(ctx, doc)
	if err != nil {
		return nil, err
	}
	path := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		path = append(path, ancestors[i].Title)
	}
	path = append(path, doc.Title)

	url := doc.URL
	if url == "" && s.connectorRegistry != nil {
		url = s.connectorRegistry.ResolveWebURL(sourceType, doc.URI, doc.Metadata)
	}

	metadata := make(map[string]string, len(doc.Metadata)+len(doc.Properties))
	for key, value := range doc.Metadata {
		metadata[key] = fmt.Sprintf("%v", value)
	}
	for key, values := range doc.Properties {
		metadata["property."+key] = strings.Join(values, ", ")
	}

	return &driving.DocumentDetails{
		ID:         doc.ID,
		SourceID:   doc.SourceID,
		SourceName: sourceName,
		SourceType: sourceType,
		Title:      doc.Title,
		URI:        doc.URI,
		URL:        url,
		Path:       path,
		ChunkCount: chunkCount,
		BlockCount: len(domain.FlattenBlocks(doc.Blocks)),
		TagCount:   len(doc.Tags),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
		Metadata:   metadata,
	}, nil
}

// Tree builds the page hierarchy for a source. Empty sourceID uses all
// documents.
func (s *DocumentService) Tree(ctx context.Context, sourceID string) (*hierarchy.Hierarchy, error) {
	docs, err := s.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(docs), nil
}

// Outline returns the heading structure of a document.
func (s *DocumentService) Outline(ctx context.Context, documentID string) ([]*hierarchy.Section, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return hierarchy.Outline(doc.Blocks), nil
}

// Tags returns a document's stored tags. With inherited set, the tags of
// its ancestors are added with decayed confidence.
func (s *DocumentService) Tags(ctx context.Context, documentID string, inherited bool) ([]domain.Tag, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !inherited || s.tagger == nil {
		return doc.Tags, nil
	}

	ancestors, err := s.ancestors(ctx, doc)
	if err != nil {
		return nil, err
	}
	levels := make([][]domain.Tag, len(ancestors))
	for i := range ancestors {
		levels[i] = ancestors[i].Tags
	}
	return s.tagger.Inherit(doc.Tags, levels), nil
}

// FindByTag returns documents carrying a tag, given by name or slug.
func (s *DocumentService) FindByTag(ctx context.Context, tag string) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	slug := tagging.Slug(tag)
	if slug == "" {
		return nil, fmt.Errorf("%w: empty tag", domain.ErrInvalidInput)
	}
	return s.docStore.FindByTag(ctx, slug)
}

// ListTags returns all tags with document counts.
func (s *DocumentService) ListTags(ctx context.Context) ([]domain.TagCount, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.docStore.ListTags(ctx)
}

// Analyze re-runs text analysis on a stored document and persists it.
func (s *DocumentService) Analyze(ctx context.Context, documentID string) (*domain.TextAnalysis, error) {
	if s.analyzer == nil {
		return nil, domain.ErrNotImplemented
	}
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.Analyze(ctx, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", documentID, err)
	}
	doc.Analysis = analysis
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return analysis, nil
}

// Retag re-runs the tagger on a stored document and persists the tags.
func (s *DocumentService) Retag(ctx context.Context, documentID string) ([]domain.Tag, error) {
	if s.tagger == nil {
		return nil, domain.ErrNotImplemented
	}
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	tags, err := s.tagger.Tag(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("tag %s: %w", documentID, err)
	}
	if err := s.docStore.SaveTags(ctx, documentID, tags); err != nil {
		return nil, fmt.Errorf("save tags: %w", err)
	}
	logger.Debug("Retagged %s: %d tags", documentID, len(tags))
	return tags, nil
}

// ancestors loads the stored parents of doc, nearest first. The walk stops
// at a missing parent, a repeated ID or maxAncestors levels.
func (s *DocumentService) ancestors(ctx context.Context, doc *domain.Document) ([]domain.Document, error) {
	var out []domain.Document
	seen := map[string]bool{doc.ID: true}

	parentID := doc.ParentIDOrEmpty()
	for parentID != "" && !seen[parentID] && len(out) < maxAncestors {
		parent, err := s.docStore.GetDocument(ctx, parentID)
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load parent %s: %w", parentID, err)
		}
		seen[parentID] = true
		out = append(out, *parent)
		parentID = parent.ParentIDOrEmpty()
	}
	return out, nil
}
