// Package chunker provides a section-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits a document into chunks. Documents with blocks are first
// split at headings, so a chunk never spans two sections; each section is
// then split into windows of at most chunkSize characters.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

type section struct {
	heading string
	level   int
	text    string
}

// Process splits the document into chunks.
// Input chunks are ignored; this processor creates new chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	position := 0

	for _, sec := range sections(doc) {
		for _, piece := range p.split(sec.text) {
			chunk := domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Content:    piece,
				Position:   position,
				Heading:    sec.heading,
				Metadata:   make(map[string]any),
			}
			if sec.level > 0 {
				chunk.Metadata["heading_level"] = sec.level
			}
			chunks = append(chunks, chunk)
			position++
		}
	}

	return chunks, nil
}

func sections(doc *domain.Document) []section {
	if len(doc.Blocks) == 0 {
		if strings.TrimSpace(doc.Content) == "" {
			return nil
		}
		return []section{{text: doc.Content}}
	}

	var out []section
	for _, s := range hierarchy.Sections(doc.Blocks) {
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, section{heading: s.Heading, level: s.Level, text: text})
	}
	return out
}

// split cuts text into windows of at most chunkSize runes, stepping back
// chunkSize-overlap each time. A window that would end inside a word is
// shortened to the last whitespace in its second half.
func (p *Processor) split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n <= p.chunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else if cut := lastSpace(runes, start+p.chunkSize/2, end); cut > start {
			end = cut
		}

		out = append(out, string(runes[start:end]))
		if end == n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return out
}

// lastSpace returns the index just after the last whitespace rune in
// runes[from:to], or -1.
func lastSpace(runes []rune, from, to int) int {
	for i := to - 1; i >= from; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return -1
}
