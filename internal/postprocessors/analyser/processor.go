// Package analyser provides the text analysis processor.
package analyser

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// DefaultChunkKeywords is the number of keywords recorded per chunk.
const DefaultChunkKeywords = 5

// TextAnalyzer is the text processor used by the analyser.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*domain.TextAnalysis, error)
	Keywords(text string, n int) []domain.Keyword
}

// Processor analyses the document text, stores the result on the document
// and annotates each chunk with its own keywords.
// It implements the PostProcessor interface.
type Processor struct {
	text          TextAnalyzer
	chunkKeywords int
}

// Option configures the analyser.
type Option func(*Processor)

// WithChunkKeywords sets how many keywords are recorded per chunk.
// Zero disables chunk keywords.
func WithChunkKeywords(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.chunkKeywords = n
		}
	}
}

// New creates an analyser around a text processor.
func New(text TextAnalyzer, opts ...Option) *Processor {
	p := &Processor{
		text:          text,
		chunkKeywords: DefaultChunkKeywords,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "analyser"
}

// Process sets doc.Analysis and copies the language and summary into the
// document metadata. Chunks are returned with a "keywords" metadata entry.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	text := doc.Content
	if strings.TrimSpace(text) == "" {
		text = domain.BlocksText(doc.Blocks)
	}

	analysis, err := p.text.Analyze(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", doc.ID, err)
	}
	doc.Analysis = analysis

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["language"] = analysis.Language
	doc.Metadata["word_count"] = analysis.WordCount
	if analysis.Summary != "" {
		doc.Metadata["summary"] = analysis.Summary
	}

	if p.chunkKeywords == 0 {
		return chunks, nil
	}
	for i := range chunks {
		keywords := p.text.Keywords(chunks[i].Content, p.chunkKeywords)
		if len(keywords) == 0 {
			continue
		}
		terms := make([]string, len(keywords))
		for j, kw := range keywords {
			terms[j] = kw.Term
		}
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata["keywords"] = terms
	}
	return chunks, nil
}
