package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// UntitledPage is the title of pages without one.
const UntitledPage = "Untitled"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Notion page payloads.
type Normaliser struct{}

// New creates a new Notion page normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// SupportedConnectorTypes returns connector types for specialised handling.
func (n *Normaliser) SupportedConnectorTypes() []string {
	return []string{"notion"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 95
}

// Normalise converts a Notion page payload to a document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var page Page
	if err := json.Unmarshal(raw.Content, &page); err != nil {
		return nil, fmt.Errorf("parse notion page: %w", err)
	}
	if page.ID == "" {
		page.ID = strings.TrimPrefix(raw.URI, URIPrefix)
	}
	if page.ID == "" {
		return nil, fmt.Errorf("parse notion page: %w: missing id", domain.ErrInvalidInput)
	}

	doc := ToDocument(&page, raw.SourceID)
	if raw.URI != "" {
		doc.URI = raw.URI
	}
	for k, v := range raw.Metadata {
		if _, ok := doc.Metadata[k]; !ok {
			doc.Metadata[k] = v
		}
	}

	return &driven.NormaliseResult{Document: *doc}, nil
}

// ToDocument converts a page to a document. The document ID is the page ID.
func ToDocument(page *Page, sourceID string) *domain.Document {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = UntitledPage
	}

	doc := &domain.Document{
		ID:         page.ID,
		SourceID:   sourceID,
		URI:        PageURI(page.ID),
		URL:        page.URL,
		Title:      title,
		Content:    domain.BlocksText(page.Blocks),
		Blocks:     page.Blocks,
		Properties: page.Properties,
		CreatedAt:  page.CreatedTime,
		UpdatedAt:  page.LastEditedTime,
		Metadata: map[string]any{
			"mime_type": MIMEType,
			"format":    "notion",
			"markdown":  RenderMarkdown(page.Blocks),
		},
	}
	if page.ParentID != "" && page.ParentID != page.ID {
		parent := page.ParentID
		doc.ParentID = &parent
	}
	if page.ParentType != "" {
		doc.Metadata["parent_type"] = page.ParentType
	}
	if page.DatabaseID != "" {
		doc.Metadata["database_id"] = page.DatabaseID
	}
	if page.Archived {
		doc.Metadata["archived"] = true
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}
	return doc
}
