package mcp

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

// mockSourceService is a mock implementation of driving.SourceService.
type mockSourceService struct {
	sources []domain.Source
	err     error
}

func (m *mockSourceService) Add(_ context.Context, s domain.Source) (*domain.Source, error) {
	return &s, m.err
}

func (m *mockSourceService) Get(_ context.Context, _ string) (*domain.Source, error) {
	if len(m.sources) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.sources[0], m.err
}

func (m *mockSourceService) List(_ context.Context) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceService) Update(_ context.Context, _ domain.Source) error {
	return m.err
}

func (m *mockSourceService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSourceService) ValidateConfig(_ context.Context, _ string, _ map[string]string) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	content   string
	details   *driving.DocumentDetails
	sections  []*hierarchy.Section
	tags      []domain.TagCount
	err       error

	lastSourceID string
	lastTag      string
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) ListBySource(_ context.Context, sourceID string) ([]domain.Document, error) {
	m.lastSourceID = sourceID
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == id {
			return &m.documents[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ string) (*driving.DocumentDetails, error) {
	if m.details == nil {
		return nil, domain.ErrNotFound
	}
	return m.details, m.err
}

func (m *mockDocumentService) Tree(_ context.Context, sourceID string) (*hierarchy.Hierarchy, error) {
	m.lastSourceID = sourceID
	if m.err != nil {
		return nil, m.err
	}
	return hierarchy.Build(m.documents), nil
}

func (m *mockDocumentService) Outline(_ context.Context, _ string) ([]*hierarchy.Section, error) {
	return m.sections, m.err
}

func (m *mockDocumentService) Tags(_ context.Context, _ string, _ bool) ([]domain.Tag, error) {
	return nil, m.err
}

func (m *mockDocumentService) FindByTag(_ context.Context, tag string) ([]domain.Document, error) {
	m.lastTag = tag
	return m.documents, m.err
}

func (m *mockDocumentService) ListTags(_ context.Context) ([]domain.TagCount, error) {
	return m.tags, m.err
}

func (m *mockDocumentService) Analyze(_ context.Context, _ string) (*domain.TextAnalysis, error) {
	return nil, m.err
}

func (m *mockDocumentService) Retag(_ context.Context, _ string) ([]domain.Tag, error) {
	return nil, m.err
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	result *driving.AnalysisResult
	err    error
	text   string
}

func (m *mockAnalysisService) AnalyzeText(_ context.Context, text string) (*driving.AnalysisResult, error) {
	m.text = text
	return m.result, m.err
}

func (m *mockAnalysisService) AnalyzeFile(_ context.Context, _ string) (*driving.AnalysisResult, error) {
	return m.result, m.err
}

func strPtr(s string) *string {
	return &s
}
