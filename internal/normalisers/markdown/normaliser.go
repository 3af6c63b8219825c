package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// exportID is the page ID Notion appends to exported file names.
var exportID = regexp.MustCompile(`\s+[0-9a-f]{32}$`)

// Normaliser parses Markdown, including Notion's "Export as Markdown"
// files, into blocks.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority is above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts a markdown document to a normalised document.
// Blocks are parsed from the Markdown structure and Content is their
// plain text, one block per line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	return &driven.NormaliseResult{
		Document: BuildDocument(raw, ParseBlocks(string(raw.Content)), "markdown"),
	}, nil
}

// BuildDocument creates a document from parsed blocks. The title is the
// "title" metadata entry, the first level 1 heading or the file name.
func BuildDocument(raw *domain.RawDocument, blocks []domain.Block, format string) domain.Document {
	now := time.Now()
	doc := domain.Document{
		ID:        uuid.New().String(),
		SourceID:  raw.SourceID,
		URI:       raw.URI,
		Title:     extractTitle(raw, blocks),
		Content:   domain.BlocksText(blocks),
		Blocks:    blocks,
		Metadata:  copyMetadata(raw.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = format
	return doc
}

func extractTitle(raw *domain.RawDocument, blocks []domain.Block) string {
	if title, ok := raw.Metadata["title"].(string); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	for _, b := range blocks {
		if b.Type == domain.BlockHeading1 && b.Text != "" {
			return b.Text
		}
	}
	return TitleFromURI(raw.URI)
}

// TitleFromURI turns a file name into a title, dropping the page ID
// suffix of Notion export file names.
func TitleFromURI(uri string) string {
	name := filepath.Base(uri)
	if uri == "" || name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = exportID.ReplaceAllString(name, "")
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

func copyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
