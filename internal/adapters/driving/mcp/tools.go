package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

// errAnalysisUnavailable is returned by analyze_text without an analysis service.
var errAnalysisUnavailable = errors.New("mcp: analysis service is not configured")

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document (Notion page) ID"`
}

// DocumentOutput describes one document.
type DocumentOutput struct {
	ID       string   `json:"id"`
	SourceID string   `json:"source_id"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	ParentID string   `json:"parent_id,omitempty"`
	Path     []string `json:"path,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Outline  []string `json:"outline,omitempty"`
	Content  string   `json:"content,omitempty"`
}

// TreeInput is the input schema for the document_tree tool.
type TreeInput struct {
	SourceID string `json:"source_id,omitempty" jsonschema:"limit the tree to one source (default all sources)"`
	RootID   string `json:"root_id,omitempty" jsonschema:"render only the subtree below this document"`
}

// TreeOutput is the output schema for the document_tree tool.
type TreeOutput struct {
	Tree      string `json:"tree"`
	Documents int    `json:"documents"`
}

// ListTagsInput is the input schema for the list_tags tool.
type ListTagsInput struct{}

// TagOutput is a tag with its document count.
type TagOutput struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// ListTagsOutput is the output schema for the list_tags tool.
type ListTagsOutput struct {
	Tags []TagOutput `json:"tags"`
}

// FindByTagInput is the input schema for the find_by_tag tool.
type FindByTagInput struct {
	Tag string `json:"tag" jsonschema:"tag name or slug"`
}

// DocumentsOutput is a list of documents.
type DocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// AnalyzeTextInput is the input schema for the analyze_text tool.
type AnalyzeTextInput struct {
	Text string `json:"text" jsonschema:"the text to analyse"`
}

// AnalyzeTextOutput is the output schema for the analyze_text tool.
type AnalyzeTextOutput struct {
	Language      string   `json:"language"`
	WordCount     int      `json:"word_count"`
	SentenceCount int      `json:"sentence_count"`
	ReadingTime   string   `json:"reading_time"`
	Keywords      []string `json:"keywords,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get a synced Notion document with its path, tags, keywords, outline and content",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_tree",
		Description: "Render the page hierarchy of synced documents",
	}, s.handleDocumentTree)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags with the number of documents carrying each",
	}, s.handleListTags)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_by_tag",
		Description: "Find documents carrying a tag",
	}, s.handleFindByTag)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_text",
		Description: "Detect language, extract keywords, summarise and tag arbitrary text",
	}, s.handleAnalyzeText)
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if input.DocumentID == "" {
		return nil, DocumentOutput{}, fmt.Errorf("document_id: %w", domain.ErrInvalidInput)
	}

	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	out := documentOutput(doc)
	if details, err := s.ports.Document.GetDetails(ctx, doc.ID); err == nil {
		out.Path = details.Path
		if out.URL == "" {
			out.URL = details.URL
		}
	}
	if sections, err := s.ports.Document.Outline(ctx, doc.ID); err == nil {
		out.Outline = hierarchy.Headings(sections)
	}
	content, err := s.ports.Document.GetContent(ctx, doc.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	out.Content = content

	return nil, out, nil
}

func (s *Server) handleDocumentTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TreeInput,
) (*mcp.CallToolResult, TreeOutput, error) {
	tree, err := s.ports.Document.Tree(ctx, input.SourceID)
	if err != nil {
		return nil, TreeOutput{}, err
	}
	rendered, err := tree.Render(input.RootID)
	if err != nil {
		return nil, TreeOutput{}, err
	}
	return nil, TreeOutput{Tree: rendered, Documents: tree.Len()}, nil
}

func (s *Server) handleListTags(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListTagsInput,
) (*mcp.CallToolResult, ListTagsOutput, error) {
	counts, err := s.ports.Document.ListTags(ctx)
	if err != nil {
		return nil, ListTagsOutput{}, err
	}

	out := ListTagsOutput{Tags: make([]TagOutput, len(counts))}
	for i, c := range counts {
		out.Tags[i] = TagOutput{Slug: c.Slug, Name: c.Name, Documents: c.Documents}
	}
	return nil, out, nil
}

func (s *Server) handleFindByTag(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindByTagInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	if input.Tag == "" {
		return nil, DocumentsOutput{}, fmt.Errorf("tag: %w", domain.ErrInvalidInput)
	}

	docs, err := s.ports.Document.FindByTag(ctx, input.Tag)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}

	out := DocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		out.Documents[i] = documentOutput(&docs[i])
	}
	return nil, out, nil
}

func (s *Server) handleAnalyzeText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeTextInput,
) (*mcp.CallToolResult, AnalyzeTextOutput, error) {
	if s.ports.Analysis == nil {
		return nil, AnalyzeTextOutput{}, errAnalysisUnavailable
	}
	if input.Text == "" {
		return nil, AnalyzeTextOutput{}, fmt.Errorf("text: %w", domain.ErrInvalidInput)
	}

	result, err := s.ports.Analysis.AnalyzeText(ctx, input.Text)
	if err != nil {
		return nil, AnalyzeTextOutput{}, err
	}

	var out AnalyzeTextOutput
	if a := result.Analysis; a != nil {
		out.Language = a.Language
		out.WordCount = a.WordCount
		out.SentenceCount = a.SentenceCount
		out.ReadingTime = a.ReadingTime.String()
		out.Keywords = a.KeywordTerms()
		out.Summary = a.Summary
	}
	out.Tags = tagNames(result.Tags)
	return nil, out, nil
}

// documentOutput converts a document without its content.
func documentOutput(doc *domain.Document) DocumentOutput {
	out := DocumentOutput{
		ID:       doc.ID,
		SourceID: doc.SourceID,
		Title:    doc.Title,
		URL:      doc.URL,
		ParentID: doc.ParentIDOrEmpty(),
		Tags:     tagNames(doc.Tags),
	}
	if doc.Analysis != nil {
		out.Keywords = doc.Analysis.KeywordTerms()
		out.Summary = doc.Analysis.Summary
	}
	return out
}

func tagNames(tags []domain.Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
