package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
)

type syncFixture struct {
	sources   *memory.SourceStore
	states    *memory.SyncStateStore
	docs      *memory.DocumentStore
	connector *mockConnector
	factory   *mockFactory
	registry  *mockRegistry
	orch      *SyncOrchestrator
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		sources:   memory.NewSourceStore(),
		states:    memory.NewSyncStateStore(),
		docs:      memory.NewDocumentStore(),
		connector: &mockConnector{sourceID: "src"},
		registry:  &mockRegistry{},
	}
	f.factory = &mockFactory{connector: f.connector}
	f.orch = NewSyncOrchestrator(f.sources, f.states, f.docs, f.factory, f.registry, mockPipeline{})
	require.NoError(t, f.sources.Save(context.Background(), domain.Source{ID: "src", Type: "mock", Name: "Workspace"}))
	return f
}

func TestSync_Full(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	child := rawPage("child", "Child", "child body")
	child.Metadata = map[string]any{"parent": "root"}
	f.connector.docs = []domain.RawDocument{rawPage("root", "Root", "root body"), child, rawPage("bad", "Bad", "")}
	f.connector.cursor = "cursor-1"
	f.registry.failURI = "notion://pages/bad"

	require.NoError(t, f.orch.Sync(ctx, "src"))

	docs, err := f.docs.ListDocuments(ctx, "src")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	got, err := f.docs.GetDocument(ctx, "child")
	require.NoError(t, err)
	assert.Equal(t, "src", got.SourceID)
	assert.Equal(t, "root", got.ParentIDOrEmpty())
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "child", got.Tags[0].Slug)

	chunks, err := f.docs.GetChunks(ctx, "child")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "child body", chunks[0].Content)

	state, err := f.states.Get(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "cursor-1", state.Cursor)
	assert.False(t, state.LastSync.IsZero())
	assert.True(t, f.connector.closed)

	status, err := f.orch.Status(ctx, "src")
	require.NoError(t, err)
	assert.False(t, status.Running)
}

func TestSync_FullPrunesStaleDocuments(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "gone", SourceID: "src", Title: "Gone"}))
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "other", SourceID: "elsewhere"}))
	f.connector.docs = []domain.RawDocument{rawPage("kept", "Kept", "text")}

	require.NoError(t, f.orch.Sync(ctx, "src"))

	_, err := f.docs.GetDocument(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.docs.GetDocument(ctx, "kept")
	assert.NoError(t, err)
	_, err = f.docs.GetDocument(ctx, "other")
	assert.NoError(t, err, "documents of other sources are untouched")
}

func TestSync_FullKeepsDocumentsThatFailedToProcess(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{
		ID: "bad", SourceID: "src", URI: "notion://pages/bad", Title: "Bad",
	}))
	f.connector.docs = []domain.RawDocument{rawPage("kept", "Kept", "text"), rawPage("bad", "Bad", "")}
	f.registry.failURI = "notion://pages/bad"

	require.NoError(t, f.orch.Sync(ctx, "src"))

	got, err := f.docs.GetDocument(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, "Bad", got.Title)

	docs, err := f.docs.ListDocuments(ctx, "src")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSync_Incremental(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	f.connector.capabilities = driven.ConnectorCapabilities{SupportsIncremental: true, SupportsCursorReturn: true}
	require.NoError(t, f.states.Save(ctx, domain.SyncState{SourceID: "src", Cursor: "old"}))
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "a", SourceID: "src", URI: "notion://pages/a", Title: "A"}))
	require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "b", SourceID: "src", URI: "notion://pages/b", Title: "B"}))

	f.connector.changes = []domain.RawDocumentChange{
		{Type: domain.ChangeUpdated, Document: rawPage("a", "A2", "updated")},
		{Type: domain.ChangeDeleted, Document: domain.RawDocument{URI: "notion://pages/b"}},
		{Type: domain.ChangeDeleted, Document: domain.RawDocument{URI: "notion://pages/never"}},
	}
	f.connector.cursor = "new"

	require.NoError(t, f.orch.Sync(ctx, "src"))

	assert.True(t, f.connector.incremental)
	a, err := f.docs.GetDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A2", a.Title)
	_, err = f.docs.GetDocument(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	state, err := f.states.Get(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "new", state.Cursor)
}

func TestSync_CursorFallback(t *testing.T) {
	f := newSyncFixture(t)
	f.connector.capabilities = driven.ConnectorCapabilities{SupportsCursorReturn: true}
	fixed := time.Unix(1700000000, 0)
	f.orch.now = func() time.Time { return fixed }

	require.NoError(t, f.orch.Sync(context.Background(), "src"))

	state, err := f.states.Get(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000000000", state.Cursor)
}

func TestSync_Errors(t *testing.T) {
	t.Run("unknown source", func(t *testing.T) {
		f := newSyncFixture(t)
		err := f.orch.Sync(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		f := newSyncFixture(t)
		f.connector.capabilities.SupportsValidation = true
		f.connector.validateErr = domain.ErrAuthRequired
		err := f.orch.Sync(context.Background(), "src")
		assert.ErrorIs(t, err, domain.ErrConnectorValidation)
		assert.ErrorIs(t, err, domain.ErrAuthRequired)
	})

	t.Run("factory", func(t *testing.T) {
		f := newSyncFixture(t)
		f.factory.err = domain.ErrUnsupportedType
		assert.ErrorIs(t, f.orch.Sync(context.Background(), "src"), domain.ErrUnsupportedType)
	})

	t.Run("connector failure keeps state", func(t *testing.T) {
		f := newSyncFixture(t)
		ctx := context.Background()
		require.NoError(t, f.docs.SaveDocument(ctx, &domain.Document{ID: "keep", SourceID: "src"}))
		f.connector.syncErr = domain.ErrRateLimited

		err := f.orch.Sync(ctx, "src")
		assert.ErrorIs(t, err, domain.ErrRateLimited)

		_, err = f.states.Get(ctx, "src")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.docs.GetDocument(ctx, "keep")
		assert.NoError(t, err, "failed full sync does not prune")
	})

	t.Run("in progress", func(t *testing.T) {
		f := newSyncFixture(t)
		f.orch.activeSyncs["src"] = &driving.SyncStatus{SourceID: "src", Running: true}

		err := f.orch.Sync(context.Background(), "src")
		assert.ErrorIs(t, err, domain.ErrSyncInProgress)

		status, err := f.orch.Status(context.Background(), "src")
		require.NoError(t, err)
		assert.True(t, status.Running)
	})
}

func TestSyncAll(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()
	require.NoError(t, f.sources.Save(ctx, domain.Source{ID: "second", Type: "mock", Name: "Second"}))
	f.connector.docs = []domain.RawDocument{rawPage("p", "P", "x")}

	require.NoError(t, f.orch.SyncAll(ctx))
	assert.ElementsMatch(t, []string{"src", "second"}, f.factory.created)

	f.factory.err = errors.New("offline")
	err := f.orch.SyncAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync src")
	assert.Contains(t, err.Error(), "sync second")
}
