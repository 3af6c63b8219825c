package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// mockConnector replays fixed documents or changes.
type mockConnector struct {
	sourceID     string
	capabilities driven.ConnectorCapabilities
	docs         []domain.RawDocument
	changes      []domain.RawDocumentChange
	syncErr      error
	cursor       string
	validateErr  error
	workspace    string
	workspaceErr error
	closed       bool
	incremental  bool
}

func (m *mockConnector) Type() string                               { return "mock" }
func (m *mockConnector) SourceID() string                           { return m.sourceID }
func (m *mockConnector) Capabilities() driven.ConnectorCapabilities { return m.capabilities }
func (m *mockConnector) Validate(context.Context) error             { return m.validateErr }
func (m *mockConnector) Close() error                               { m.closed = true; return nil }

func (m *mockConnector) Workspace(context.Context) (string, error) {
	return m.workspace, m.workspaceErr
}

func (m *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)
	go func() {
		defer close(docs)
		defer close(errs)
		for _, d := range m.docs {
			select {
			case <-ctx.Done():
				return
			case docs <- d:
			}
		}
		m.finish(errs)
	}()
	return docs, errs
}

func (m *mockConnector) IncrementalSync(ctx context.Context, _ domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error) {
	m.incremental = true
	changes := make(chan domain.RawDocumentChange)
	errs := make(chan error, 1)
	go func() {
		defer close(changes)
		defer close(errs)
		for _, c := range m.changes {
			select {
			case <-ctx.Done():
				return
			case changes <- c:
			}
		}
		m.finish(errs)
	}()
	return changes, errs
}

func (m *mockConnector) finish(errs chan<- error) {
	switch {
	case m.syncErr != nil:
		errs <- m.syncErr
	case m.cursor != "":
		errs <- &driven.SyncComplete{NewCursor: m.cursor}
	}
}

// mockFactory hands out a fixed connector.
type mockFactory struct {
	connector *mockConnector
	err       error
	created   []string
}

func (f *mockFactory) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	f.created = append(f.created, source.ID)
	if f.err != nil {
		return nil, f.err
	}
	return f.connector, nil
}

func (f *mockFactory) Register(string, driven.ConnectorBuilder) {}
func (f *mockFactory) SupportedTypes() []string                 { return []string{"mock"} }

// mockRegistry normalises "title|body" payloads, using the URI tail as ID
// and "parent" metadata as ParentID.
type mockRegistry struct {
	failURI string
}

func (r *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw.URI == r.failURI {
		return nil, domain.ErrUnsupportedType
	}
	title, body, _ := strings.Cut(string(raw.Content), "|")
	doc := domain.Document{
		ID:       raw.URI[strings.LastIndex(raw.URI, "/")+1:],
		SourceID: raw.SourceID,
		URI:      raw.URI,
		Title:    title,
		Content:  body,
		Blocks:   []domain.Block{{Type: domain.BlockParagraph, Text: body}},
	}
	if p, ok := raw.Metadata["parent"].(string); ok {
		doc.ParentID = &p
	}
	return &driven.NormaliseResult{Document: doc}, nil
}

func (r *mockRegistry) Register(driven.Normaliser)   {}
func (r *mockRegistry) SupportedMIMETypes() []string { return nil }

// mockPipeline emits one chunk per document and tags it with its title.
type mockPipeline struct{}

func (mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	doc.Tags = []domain.Tag{{Name: doc.Title, Slug: strings.ToLower(doc.Title), Source: domain.TagSourceKeyword, Confidence: 0.5}}
	return []domain.Chunk{{ID: doc.ID + "-0", DocumentID: doc.ID, Content: doc.Content}}, nil
}

// mockAnalyzer counts words.
type mockAnalyzer struct {
	err error
}

func (m mockAnalyzer) Analyze(_ context.Context, text string) (*domain.TextAnalysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.TextAnalysis{Language: "en", WordCount: len(strings.Fields(text))}, nil
}

// mockTagger tags with the first word of the content and inherits ancestor
// tags at half confidence per level.
type mockTagger struct{}

func (mockTagger) Tag(_ context.Context, doc *domain.Document) ([]domain.Tag, error) {
	fields := strings.Fields(doc.Content)
	if len(fields) == 0 {
		return nil, nil
	}
	name := strings.ToLower(fields[0])
	return []domain.Tag{{Name: name, Slug: name, Source: domain.TagSourceKeyword, Confidence: 0.6}}, nil
}

func (mockTagger) Inherit(own []domain.Tag, ancestors [][]domain.Tag) []domain.Tag {
	out := append([]domain.Tag(nil), own...)
	factor := 1.0
	for _, level := range ancestors {
		factor *= 0.5
		for _, t := range level {
			t.Source = domain.TagSourceInherited
			t.Confidence *= factor
			out = append(out, t)
		}
	}
	return out
}

// mockOAuth returns a fixed grant.
type mockOAuth struct {
	grant *domain.OAuthGrant
	err   error
}

func (m *mockOAuth) AuthCodeURL(state string) string {
	return "https://example.test/authorize?state=" + state
}

func (m *mockOAuth) Exchange(_ context.Context, _ string) (*domain.OAuthGrant, error) {
	return m.grant, m.err
}

func rawPage(id, title, body string) domain.RawDocument {
	return domain.RawDocument{URI: "notion://pages/" + id, Content: []byte(title + "|" + body)}
}

func strPtr(s string) *string { return &s }
