package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Tags are kept apart from documents and attached on read, like the
// SQLite store does.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	tags      map[string][]domain.Tag
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		tags:      make(map[string][]domain.Tag),
	}
}

// SaveDocument stores or updates a document. Tags are saved separately.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *doc
	stored.Tags = nil
	s.documents[doc.ID] = stored
	return nil
}

// SaveChunks replaces the chunks of every document referenced by chunks.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byDoc := make(map[string][]domain.Chunk)
	for _, c := range chunks {
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}
	for id, cs := range byDoc {
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].Position < cs[j].Position })
		s.chunks[id] = cs
	}
	return nil
}

// GetDocument retrieves a document by ID with its tags.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc.Tags = s.tagsOf(id)
	return &doc, nil
}

// GetChunks retrieves all chunks for a document.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := s.chunks[documentID]
	if len(chunks) == 0 {
		return nil, nil
	}
	return append([]domain.Chunk(nil), chunks...), nil
}

// DeleteDocument removes a document with its chunks and tags.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	delete(s.tags, id)
	return nil
}

// ListDocuments returns documents for a source, all when sourceID is empty.
func (s *DocumentStore) ListDocuments(_ context.Context, sourceID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if sourceID == "" || doc.SourceID == sourceID {
			doc.Tags = s.tagsOf(id)
			result = append(result, doc)
		}
	}
	sortDocuments(result)
	return result, nil
}

// SaveTags replaces the tags of a document, merging duplicate slugs.
func (s *DocumentStore) SaveTags(_ context.Context, documentID string, tags []domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySlug := make(map[string]int)
	var out []domain.Tag
	for _, t := range tags {
		if t.Slug == "" {
			continue
		}
		if i, ok := bySlug[t.Slug]; ok {
			if t.Confidence < out[i].Confidence {
				t.Confidence = out[i].Confidence
			}
			out[i] = t
			continue
		}
		bySlug[t.Slug] = len(out)
		out = append(out, t)
	}
	if len(out) == 0 {
		delete(s.tags, documentID)
		return nil
	}
	s.tags[documentID] = out
	return nil
}

// GetTags returns the tags of a document ordered by confidence.
func (s *DocumentStore) GetTags(_ context.Context, documentID string) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagsOf(documentID), nil
}

// FindByTag returns documents carrying the tag slug, most confident first.
func (s *DocumentStore) FindByTag(_ context.Context, slug string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		doc        domain.Document
		confidence float64
	}
	var hits []hit
	for id, tags := range s.tags {
		doc, ok := s.documents[id]
		if !ok {
			continue
		}
		for _, t := range tags {
			if t.Slug == slug {
				doc.Tags = s.tagsOf(id)
				hits = append(hits, hit{doc: doc, confidence: t.Confidence})
				break
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].confidence != hits[j].confidence {
			return hits[i].confidence > hits[j].confidence
		}
		if hits[i].doc.Title != hits[j].doc.Title {
			return hits[i].doc.Title < hits[j].doc.Title
		}
		return hits[i].doc.ID < hits[j].doc.ID
	})

	var result []domain.Document
	for _, h := range hits {
		result = append(result, h.doc)
	}
	return result, nil
}

// ListTags returns every tag slug with the number of documents carrying it.
func (s *DocumentStore) ListTags(_ context.Context) ([]domain.TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]*domain.TagCount)
	for id, tags := range s.tags {
		if _, ok := s.documents[id]; !ok {
			continue
		}
		for _, t := range tags {
			tc, ok := counts[t.Slug]
			if !ok {
				tc = &domain.TagCount{Slug: t.Slug, Name: t.Name}
				counts[t.Slug] = tc
			}
			if t.Name < tc.Name {
				tc.Name = t.Name
			}
			tc.Documents++
		}
	}

	result := make([]domain.TagCount, 0, len(counts))
	for _, tc := range counts {
		result = append(result, *tc)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Documents != result[j].Documents {
			return result[i].Documents > result[j].Documents
		}
		return result[i].Slug < result[j].Slug
	})
	return result, nil
}

// tagsOf returns a sorted copy. Callers hold the lock.
func (s *DocumentStore) tagsOf(documentID string) []domain.Tag {
	tags := s.tags[documentID]
	if len(tags) == 0 {
		return nil
	}
	out := append([]domain.Tag(nil), tags...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

func sortDocuments(docs []domain.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Title != docs[j].Title {
			return docs[i].Title < docs[j].Title
		}
		return docs[i].ID < docs[j].ID
	})
}
