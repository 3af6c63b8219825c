package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
	"github.com/custodia-labs/notion-nlp/internal/normalisers"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// maxFileSize bounds files read by AnalyzeFile.
const maxFileSize = 10 << 20

// AnalysisService analyses text and local files without storing them.
type AnalysisService struct {
	registry driven.NormaliserRegistry
	analyzer TextAnalyzer
	tagger   DocumentTagger
}

// NewAnalysisService creates an analysis service. tagger may be nil.
func NewAnalysisService(registry driven.NormaliserRegistry, analyzer TextAnalyzer, tagger DocumentTagger) *AnalysisService {
	return &AnalysisService{registry: registry, analyzer: analyzer, tagger: tagger}
}

// AnalyzeText analyses plain text.
func (s *AnalysisService) AnalyzeText(ctx context.Context, text string) (*driving.AnalysisResult, error) {
	doc := &domain.Document{ID: "text", Content: text}
	return s.analyze(ctx, doc)
}

// AnalyzeFile normalises a local file by its MIME type, then analyses it.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string) (*driving.AnalysisResult, error) {
	if s.registry == nil {
		return nil, domain.ErrNotImplemented
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, path, maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	result, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      "file://" + filepath.ToSlash(abs),
		MIMEType: normalisers.MIMETypeForPath(path),
		Content:  content,
		Metadata: map[string]any{"path": abs},
	})
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", path, err)
	}
	doc := result.Document
	if doc.ID == "" {
		doc.ID = abs
	}
	return s.analyze(ctx, &doc)
}

func (s *AnalysisService) analyze(ctx context.Context, doc *domain.Document) (*driving.AnalysisResult, error) {
	if s.analyzer == nil {
		return nil, domain.ErrNotImplemented
	}

	analysis, err := s.analyzer.Analyze(ctx, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}
	doc.Analysis = analysis

	result := &driving.AnalysisResult{
		Title:    doc.Title,
		Analysis: analysis,
		Outline:  hierarchy.Headings(hierarchy.Outline(doc.Blocks)),
	}
	if s.tagger != nil {
		tags, err := s.tagger.Tag(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("tag: %w", err)
		}
		result.Tags = tags
	}
	return result, nil
}
