package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func sampleDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:       "root",
			SourceID: "src",
			Title:    "Engineering",
			URL:      "https://www.notion.so/root",
			Tags:     []domain.Tag{{Name: "Infra", Slug: "infra"}},
			Analysis: &domain.TextAnalysis{
				Keywords: []domain.Keyword{{Term: "kubernetes"}, {Term: "deploy"}},
				Summary:  "How we deploy.",
			},
		},
		{ID: "child", SourceID: "src", Title: "Runbooks", ParentID: strPtr("root")},
	}
}

func TestHandleGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("returns document with details", func(t *testing.T) {
		docs := &mockDocumentService{
			documents: sampleDocuments(),
			content:   "# Engineering\n\nHow we deploy.",
			details:   &driving.DocumentDetails{Path: []string{"Engineering"}},
			sections:  []*hierarchy.Section{{Heading: "Engineering", Level: 1}},
		}
		server := newTestServer(t, &Ports{Document: docs})

		_, out, err := server.handleGetDocument(ctx, nil, GetDocumentInput{DocumentID: "root"})
		require.NoError(t, err)

		assert.Equal(t, "root", out.ID)
		assert.Equal(t, "Engineering", out.Title)
		assert.Equal(t, []string{"Infra"}, out.Tags)
		assert.Equal(t, []string{"kubernetes", "deploy"}, out.Keywords)
		assert.Equal(t, "How we deploy.", out.Summary)
		assert.Equal(t, []string{"Engineering"}, out.Path)
		assert.Equal(t, []string{"Engineering"}, out.Outline)
		assert.Contains(t, out.Content, "How we deploy.")
	})

	t.Run("child carries parent", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{documents: sampleDocuments()}})

		_, out, err := server.handleGetDocument(ctx, nil, GetDocumentInput{DocumentID: "child"})
		require.NoError(t, err)
		assert.Equal(t, "root", out.ParentID)
		assert.Empty(t, out.Path)
	})

	t.Run("empty id", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		_, _, err := server.handleGetDocument(ctx, nil, GetDocumentInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown id", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{documents: sampleDocuments()}})

		_, _, err := server.handleGetDocument(ctx, nil, GetDocumentInput{DocumentID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestHandleDocumentTree(t *testing.T) {
	ctx := context.Background()

	t.Run("whole forest", func(t *testing.T) {
		docs := &mockDocumentService{documents: sampleDocuments()}
		server := newTestServer(t, &Ports{Document: docs})

		_, out, err := server.handleDocumentTree(ctx, nil, TreeInput{SourceID: "src"})
		require.NoError(t, err)

		assert.Equal(t, "src", docs.lastSourceID)
		assert.Equal(t, 2, out.Documents)
		assert.Contains(t, out.Tree, "2 documents")
		assert.Contains(t, out.Tree, "Engineering")
		assert.Contains(t, out.Tree, "Runbooks")
	})

	t.Run("unknown root", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{documents: sampleDocuments()}})

		_, _, err := server.handleDocumentTree(ctx, nil, TreeInput{RootID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("service error", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{err: errors.New("db down")}})

		_, _, err := server.handleDocumentTree(ctx, nil, TreeInput{})
		assert.EqualError(t, err, "db down")
	})
}

func TestHandleListTags(t *testing.T) {
	docs := &mockDocumentService{tags: []domain.TagCount{
		{Slug: "infra", Name: "Infra", Documents: 3},
		{Slug: "hr", Name: "HR", Documents: 1},
	}}
	server := newTestServer(t, &Ports{Document: docs})

	_, out, err := server.handleListTags(context.Background(), nil, ListTagsInput{})
	require.NoError(t, err)
	require.Len(t, out.Tags, 2)
	assert.Equal(t, TagOutput{Slug: "infra", Name: "Infra", Documents: 3}, out.Tags[0])
}

func TestHandleFindByTag(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents", func(t *testing.T) {
		docs := &mockDocumentService{documents: sampleDocuments()[:1]}
		server := newTestServer(t, &Ports{Document: docs})

		_, out, err := server.handleFindByTag(ctx, nil, FindByTagInput{Tag: "Infra"})
		require.NoError(t, err)

		assert.Equal(t, "Infra", docs.lastTag)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "root", out.Documents[0].ID)
		assert.Empty(t, out.Documents[0].Content)
	})

	t.Run("empty tag", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		_, _, err := server.handleFindByTag(ctx, nil, FindByTagInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestHandleAnalyzeText(t *testing.T) {
	ctx := context.Background()

	t.Run("returns analysis", func(t *testing.T) {
		analysis := &mockAnalysisService{result: &driving.AnalysisResult{
			Analysis: &domain.TextAnalysis{
				Language:      "en",
				WordCount:     12,
				SentenceCount: 2,
				ReadingTime:   3 * time.Second,
				Keywords:      []domain.Keyword{{Term: "cluster"}},
				Summary:       "A cluster.",
			},
			Tags: []domain.Tag{{Name: "Infra", Slug: "infra"}},
		}}
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}, Analysis: analysis})

		_, out, err := server.handleAnalyzeText(ctx, nil, AnalyzeTextInput{Text: "The cluster runs."})
		require.NoError(t, err)

		assert.Equal(t, "The cluster runs.", analysis.text)
		assert.Equal(t, "en", out.Language)
		assert.Equal(t, 12, out.WordCount)
		assert.Equal(t, 2, out.SentenceCount)
		assert.Equal(t, "3s", out.ReadingTime)
		assert.Equal(t, []string{"cluster"}, out.Keywords)
		assert.Equal(t, []string{"Infra"}, out.Tags)
	})

	t.Run("no analysis service", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}})

		_, _, err := server.handleAnalyzeText(ctx, nil, AnalyzeTextInput{Text: "x"})
		assert.ErrorIs(t, err, errAnalysisUnavailable)
	})

	t.Run("empty text", func(t *testing.T) {
		server := newTestServer(t, &Ports{Document: &mockDocumentService{}, Analysis: &mockAnalysisService{}})

		_, _, err := server.handleAnalyzeText(ctx, nil, AnalyzeTextInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
