// Package plaintext normalises unstructured text, such as Notion's plain
// text exports and CSV database dumps, into paragraph blocks.
package plaintext

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/normalisers/markdown"
)

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser is the fallback for text/* types without a dedicated one.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"application/json",
	}
}

func (n *Normaliser) SupportedConnectorTypes() []string {
	return nil
}

func (n *Normaliser) Priority() int {
	return 5
}

// Normalise splits the text into blocks. Tabular types give one block
// per row; everything else one block per blank-line separated paragraph.
// Text is NFC normalised so that tags and keywords compare equal across
// sources.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := norm.NFC.String(strings.ReplaceAll(string(raw.Content), "\r\n", "\n"))

	var blocks []domain.Block
	switch raw.MIMEType {
	case "text/csv", "text/tab-separated-values":
		blocks = rows(text)
	default:
		blocks = paragraphs(text)
	}

	return &driven.NormaliseResult{
		Document: markdown.BuildDocument(raw, blocks, "text"),
	}, nil
}

func paragraphs(text string) []domain.Block {
	return split(blankLines.Split(text, -1))
}

func rows(text string) []domain.Block {
	return split(strings.Split(text, "\n"))
}

func split(parts []string) []domain.Block {
	var blocks []domain.Block
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		blocks = append(blocks, domain.Block{
			ID:   "block-" + strconv.Itoa(len(blocks)+1),
			Type: domain.BlockParagraph,
			Text: part,
		})
	}
	return blocks
}
