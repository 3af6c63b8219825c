// Package tagger provides the document tagging processor.
package tagger

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// DocumentTagger computes the tags of a document.
type DocumentTagger interface {
	Tag(ctx context.Context, doc *domain.Document) ([]domain.Tag, error)
}

// Processor sets doc.Tags. Chunks pass through unchanged.
// It implements the PostProcessor interface.
type Processor struct {
	tagger DocumentTagger
}

// New creates a tagging processor.
func New(tagger DocumentTagger) *Processor {
	return &Processor{tagger: tagger}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "tagger"
}

// Process tags the document. Manually assigned tags are kept and take
// precedence over computed tags with the same slug.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	tags, err := p.tagger.Tag(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("tag %s: %w", doc.ID, err)
	}

	var merged []domain.Tag
	manual := make(map[string]struct{})
	for _, tag := range doc.Tags {
		if tag.Source == domain.TagSourceManual {
			manual[tag.Slug] = struct{}{}
			merged = append(merged, tag)
		}
	}
	for _, tag := range tags {
		if _, ok := manual[tag.Slug]; !ok {
			merged = append(merged, tag)
		}
	}

	doc.Tags = merged
	return chunks, nil
}
