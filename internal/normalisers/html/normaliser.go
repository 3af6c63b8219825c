// Package html normalises HTML, such as Notion's "Export as HTML" pages,
// by sanitising it and converting it to Markdown blocks.
package html

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/normalisers/markdown"
)

var _ driven.Normaliser = (*Normaliser)(nil)

var titleTag = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Normaliser converts HTML pages. It is safe for concurrent use.
type Normaliser struct {
	policy *bluemonday.Policy
}

// New returns a normaliser that keeps user-content markup and drops
// scripts, styles, inline SVG and the document head.
func New() *Normaliser {
	p := bluemonday.UGCPolicy()
	p.SkipElementsContent("head", "svg", "template")
	return &Normaliser{policy: p}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

// Priority is above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise uses the <title> element as the title when present, otherwise
// the first level 1 heading.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	md, err := n.ToMarkdown(content)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", raw.URI, err)
	}

	doc := markdown.BuildDocument(raw, markdown.ParseBlocks(md), "html")
	if title := pageTitle(content); title != "" {
		doc.Title = title
	}
	return &driven.NormaliseResult{Document: doc}, nil
}

// ToMarkdown sanitises content and converts what remains to Markdown.
func (n *Normaliser) ToMarkdown(content string) (string, error) {
	clean := n.policy.Sanitize(content)
	if strings.TrimSpace(clean) == "" {
		return "", nil
	}
	return htmltomarkdown.ConvertString(clean)
}

func pageTitle(content string) string {
	m := titleTag.FindStringSubmatch(content)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}
