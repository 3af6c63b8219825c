package tagger

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

type mockTagger struct {
	tags []domain.Tag
	err  error
}

func (m *mockTagger) Tag(_ context.Context, _ *domain.Document) ([]domain.Tag, error) {
	return m.tags, m.err
}

func TestProcessor_Name(t *testing.T) {
	if New(&mockTagger{}).Name() != "tagger" {
		t.Error("expected name 'tagger'")
	}
}

func TestProcessor_Process(t *testing.T) {
	computed := []domain.Tag{
		{Name: "API", Slug: "api", Source: domain.TagSourceRule, Confidence: 0.9},
		{Name: "Docs", Slug: "docs", Source: domain.TagSourceRule, Confidence: 0.75},
	}
	p := New(&mockTagger{tags: computed})

	doc := &domain.Document{
		ID: "d",
		Tags: []domain.Tag{
			{Name: "Important", Slug: "important", Source: domain.TagSourceManual, Confidence: 1},
			{Name: "api", Slug: "api", Source: domain.TagSourceManual, Confidence: 1},
			{Name: "Old", Slug: "old", Source: domain.TagSourceKeyword, Confidence: 0.5},
		},
	}
	chunks := []domain.Chunk{{ID: "c1"}}

	out, err := p.Process(context.Background(), doc, chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "c1" {
		t.Error("chunks should pass through")
	}

	want := []string{"important", "api", "docs"}
	if len(doc.Tags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), doc.Tags)
	}
	for i, slug := range want {
		if doc.Tags[i].Slug != slug {
			t.Errorf("tag %d: expected %q, got %q", i, slug, doc.Tags[i].Slug)
		}
	}
	if doc.Tags[1].Source != domain.TagSourceManual {
		t.Error("manual tag should win over computed tag")
	}
}

func TestProcessor_Process_Error(t *testing.T) {
	p := New(&mockTagger{err: errors.New("boom")})
	doc := &domain.Document{ID: "d", Tags: []domain.Tag{{Slug: "keep"}}}

	if _, err := p.Process(context.Background(), doc, nil); err == nil {
		t.Error("expected error")
	}
	if len(doc.Tags) != 1 {
		t.Error("tags should be unchanged on error")
	}
}
