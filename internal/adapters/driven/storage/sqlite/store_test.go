package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// createTestSource creates a source to satisfy foreign key constraints.
func createTestSource(t *testing.T, store *Store, sourceID string) {
	t.Helper()
	err := store.SourceStore().Save(context.Background(), domain.Source{
		ID:     sourceID,
		Type:   "notion",
		Name:   "Source " + sourceID,
		Config: map[string]string{},
	})
	require.NoError(t, err)
}

func testDocument(id, sourceID, title string) *domain.Document {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:        id,
		SourceID:  sourceID,
		URI:       "notion://pages/" + id,
		Title:     title,
		Content:   title + " content",
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ==================== Store ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(dir, "metadata.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Contains(t, store.Path(), filepath.Join(".notion-nlp", "data", "metadata.db"))
}

func TestNewStore_ReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	createTestSource(t, store, "src-1")
	require.NoError(t, store.Close())

	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	got, err := store.SourceStore().Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "Source src-1", got.Name)
}

func TestMigrate_AppliesInOrderOnce(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_extra.up.sql":    {Data: []byte("CREATE TABLE extra (id INTEGER PRIMARY KEY);")},
		"003_more.up.sql":     {Data: []byte("ALTER TABLE extra ADD COLUMN name TEXT;")},
		"003_more.down.sql":   {Data: []byte("ALTER TABLE extra DROP COLUMN name;")},
		"README.md":           {Data: []byte("ignored")},
		"notversioned.up.sql": {Data: []byte("this is not sql")},
	}

	require.NoError(t, store.migrate(fsys))
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	// A second run is a no-op.
	require.NoError(t, store.migrate(fsys))

	_, err = store.db.ExecContext(ctx, "INSERT INTO extra (id, name) VALUES (1, 'x')")
	assert.NoError(t, err)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE half (id INTEGER); NOT SQL;")},
	}

	err := store.migrate(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002_broken.up.sql")

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

// ==================== Source Store ====================

func TestSourceStore_SaveGetList(t *testing.T) {
	store := setupTestStore(t)
	ss := store.SourceStore()
	ctx := context.Background()

	src := domain.Source{
		ID:            "src-b",
		Type:          "notion",
		Name:          "Wiki",
		Config:        map[string]string{"root_page_ids": "abc"},
		CredentialsID: "cred-1",
	}
	require.NoError(t, ss.Save(ctx, src))
	require.NoError(t, ss.Save(ctx, domain.Source{ID: "src-a", Type: "notion", Name: "Archive"}))

	got, err := ss.Get(ctx, "src-b")
	require.NoError(t, err)
	assert.Equal(t, "Wiki", got.Name)
	assert.Equal(t, "abc", got.Config["root_page_ids"])
	assert.Equal(t, "cred-1", got.CredentialsID)
	assert.False(t, got.CreatedAt.IsZero())

	list, err := ss.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Archive", list[0].Name)
	assert.Equal(t, "Wiki", list[1].Name)
}

func TestSourceStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ss := store.SourceStore()
	ctx := context.Background()

	require.NoError(t, ss.Save(ctx, domain.Source{ID: "s", Type: "notion", Name: "Old"}))
	require.NoError(t, ss.Save(ctx, domain.Source{ID: "s", Type: "notion", Name: "New"}))

	got, err := ss.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Empty(t, got.CredentialsID)
}

func TestSourceStore_Errors(t *testing.T) {
	store := setupTestStore(t)
	ss := store.SourceStore()
	ctx := context.Background()

	_, err := ss.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, ss.Save(ctx, domain.Source{}), domain.ErrInvalidInput)
	assert.NoError(t, ss.Delete(ctx, "missing"))
}

func TestSourceStore_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestSource(t, store, "src")

	ds := store.DocumentStore()
	require.NoError(t, ds.SaveDocument(ctx, testDocument("doc", "src", "Doc")))
	require.NoError(t, ds.SaveTags(ctx, "doc", []domain.Tag{{Name: "Go", Slug: "go", Source: domain.TagSourceRule, Confidence: 0.9}}))
	require.NoError(t, store.SyncStateStore().Save(ctx, domain.SyncState{SourceID: "src", Cursor: "c"}))

	require.NoError(t, store.SourceStore().Delete(ctx, "src"))

	_, err := ds.GetDocument(ctx, "doc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.SyncStateStore().Get(ctx, "src")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tags, err := ds.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

// ==================== Document Store ====================

func TestDocumentStore_RoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "src")

	parent := "root"
	doc := testDocument("child", "src", "Child")
	doc.ParentID = &parent
	doc.URL = "https://www.notion.so/child"
	doc.Blocks = []domain.Block{
		{ID: "b1", Type: domain.BlockHeading1, Text: "Intro"},
		{ID: "b2", Type: domain.BlockToggle, Text: "More", Children: []domain.Block{
			{ID: "b3", Type: domain.BlockToDo, Text: "Task", Checked: true},
		}},
	}
	doc.Properties = map[string][]string{"Status": {"Done"}}
	doc.Metadata = map[string]any{"format": "notion"}
	doc.Analysis = &domain.TextAnalysis{
		Language:    "en",
		WordCount:   42,
		ReadingTime: 13 * time.Second,
		Keywords:    []domain.Keyword{{Term: "sqlite", Score: 0.5, Count: 3}},
		Summary:     "A summary.",
	}

	require.NoError(t, ds.SaveDocument(ctx, doc))

	got, err := ds.GetDocument(ctx, "child")
	require.NoError(t, err)
	assert.Equal(t, "Child", got.Title)
	assert.Equal(t, "https://www.notion.so/child", got.URL)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "root", *got.ParentID)
	assert.Equal(t, doc.Blocks, got.Blocks)
	assert.Equal(t, []string{"Done"}, got.Properties["Status"])
	assert.Equal(t, "notion", got.Metadata["format"])
	require.NotNil(t, got.Analysis)
	assert.Equal(t, *doc.Analysis, *got.Analysis)
	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentStore_NoParentNoAnalysis(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "src")

	require.NoError(t, ds.SaveDocument(ctx, testDocument("d", "src", "D")))

	got, err := ds.GetDocument(ctx, "d")
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
	assert.Nil(t, got.Analysis)
	assert.Empty(t, got.Blocks)
}

func TestDocumentStore_SaveInvalid(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()

	assert.ErrorIs(t, ds.SaveDocument(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, ds.SaveDocument(context.Background(), &domain.Document{}), domain.ErrInvalidInput)
}

func TestDocumentStore_RequiresSource(t *testing.T) {
	store := setupTestStore(t)
	err := store.DocumentStore().SaveDocument(context.Background(), testDocument("d", "nope", "D"))
	assert.Error(t, err)
}

func TestDocumentStore_ListDocuments(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "a")
	createTestSource(t, store, "b")

	require.NoError(t, ds.SaveDocument(ctx, testDocument("1", "a", "Zeta")))
	require.NoError(t, ds.SaveDocument(ctx, testDocument("2", "a", "Alpha")))
	require.NoError(t, ds.SaveDocument(ctx, testDocument("3", "b", "Mid")))

	docs, err := ds.ListDocuments(ctx, "a")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Alpha", docs[0].Title)
	assert.Equal(t, "Zeta", docs[1].Title)

	all, err := ds.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := ds.ListDocuments(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocumentStore_Chunks(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "src")
	require.NoError(t, ds.SaveDocument(ctx, testDocument("d", "src", "D")))

	first := []domain.Chunk{
		{ID: "c2", DocumentID: "d", Content: "second", Position: 1, Heading: "B"},
		{ID: "c1", DocumentID: "d", Content: "first", Position: 0, Heading: "A",
			Metadata: map[string]any{"keywords": "x"}},
	}
	require.NoError(t, ds.SaveChunks(ctx, first))

	chunks, err := ds.GetChunks(ctx, "d")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Content)
	assert.Equal(t, "A", chunks[0].Heading)
	assert.Equal(t, "x", chunks[0].Metadata["keywords"])
	assert.Equal(t, "second", chunks[1].Content)

	// Saving again replaces the previous set.
	require.NoError(t, ds.SaveChunks(ctx, []domain.Chunk{
		{ID: "c9", DocumentID: "d", Content: "only", Position: 0},
	}))
	chunks, err = ds.GetChunks(ctx, "d")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only", chunks[0].Content)

	assert.NoError(t, ds.SaveChunks(ctx, nil))
}

func TestDocumentStore_DeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "src")
	require.NoError(t, ds.SaveDocument(ctx, testDocument("d", "src", "D")))
	require.NoError(t, ds.SaveChunks(ctx, []domain.Chunk{{ID: "c", DocumentID: "d", Content: "x"}}))
	require.NoError(t, ds.SaveTags(ctx, "d", []domain.Tag{{Name: "A", Slug: "a", Confidence: 1}}))

	require.NoError(t, ds.DeleteDocument(ctx, "d"))

	_, err := ds.GetDocument(ctx, "d")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := ds.GetChunks(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	tags, err := ds.GetTags(ctx, "d")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

// ==================== Tags ====================

func TestDocumentStore_Tags(t *testing.T) {
	store := setupTestStore(t)
	ds := store.DocumentStore()
	ctx := context.Background()
	createTestSource(t, store, "src")
	require.NoError(t, ds.SaveDocument(ctx, testDocument("d1", "src", "First")))
	require.NoError(t, ds.SaveDocument(ctx, testDocument("d2", "src", "Second")))

	require.NoError(t, ds.SaveTags(ctx, "d1", []domain.Tag{
		{Name: "Go", Slug: "go", Source: domain.TagSourceRule, Confidence: 0.6},
		{Name: "Databases", Slug: "databases", Source: domain.TagSourceKeyword, Confidence: 0.9},
		{Name: "go", Slug: "go", Source: domain.TagSourceProperty, Confidence: 1},
		{Name: "blank"},
	}))
	require.NoError(t, ds.SaveTags(ctx, "d2", []domain.Tag{
		{Name: "Go", Slug: "go", Source: domain.TagSourceLLM, Confidence: 0.6},
	}))

	tags, err := ds.GetTags(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Slug)
	assert.InDelta(t, 1.0, tags[0].Confidence, 1e-9)
	assert.Equal(t, domain.TagSourceProperty, tags[0].Source)
	assert.Equal(t, "databases", tags[1].Slug)

	doc, err := ds.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, doc.Tags, 2)

	found, err := ds.FindByTag(ctx, "go")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "d1", found[0].ID)
	assert.Equal(t, "d2", found[1].ID)
	assert.True(t, found[0].HasTag("databases"))

	counts, err := ds.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, domain.TagCount{Slug: "go", Name: "Go", Documents: 2}, counts[0])
	assert.Equal(t, "databases", counts[1].Slug)
	assert.Equal(t, 1, counts[1].Documents)

	// Replacing with an empty set clears.
	require.NoError(t, ds.SaveTags(ctx, "d2", nil))
	found, err = ds.FindByTag(ctx, "go")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

// ==================== Sync State Store ====================

func TestSyncStateStore(t *testing.T) {
	store := setupTestStore(t)
	ss := store.SyncStateStore()
	ctx := context.Background()
	createTestSource(t, store, "src")

	_, err := ss.Get(ctx, "src")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "src", Cursor: "one", LastSync: now}))
	require.NoError(t, ss.Save(ctx, domain.SyncState{SourceID: "src", Cursor: "two", LastSync: now}))

	got, err := ss.Get(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Cursor)
	assert.True(t, now.Equal(got.LastSync))

	require.NoError(t, ss.Delete(ctx, "src"))
	_, err = ss.Get(ctx, "src")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Credentials Store ====================

func TestCredentialsStore(t *testing.T) {
	store := setupTestStore(t)
	cs := store.CredentialsStore()
	ctx := context.Background()

	assert.ErrorIs(t, cs.Save(ctx, domain.Credentials{ID: "x"}), domain.ErrInvalidInput)

	require.NoError(t, cs.Save(ctx, domain.Credentials{
		ID: "tok", SourceID: "s1", Workspace: "Acme", Token: "secret_abc",
	}))
	require.NoError(t, cs.Save(ctx, domain.Credentials{
		ID:       "oauth",
		SourceID: "s2",
		OAuth:    &domain.OAuthToken{AccessToken: "ntn_123", TokenType: "bearer"},
	}))

	got, err := cs.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "secret_abc", got.AccessToken())
	assert.Equal(t, domain.AuthMethodToken, got.Method())
	assert.Equal(t, "Acme", got.Workspace)

	got, err = cs.GetBySourceID(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, got.OAuth)
	assert.Equal(t, "ntn_123", got.AccessToken())
	assert.Equal(t, domain.AuthMethodOAuth, got.Method())

	none, err := cs.GetBySourceID(ctx, "s3")
	assert.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, cs.Delete(ctx, "tok"))
	_, err = cs.Get(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
