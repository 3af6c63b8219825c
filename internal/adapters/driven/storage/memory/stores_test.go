package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

func TestSourceStore(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	cfg := map[string]string{"query": "roadmap"}
	require.NoError(t, store.Save(ctx, domain.Source{ID: "b", Name: "Wiki", Type: "notion", Config: cfg}))
	require.NoError(t, store.Save(ctx, domain.Source{ID: "a", Name: "Archive", Type: "notion"}))
	cfg["query"] = "mutated"

	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "roadmap", got.Config["query"])
	created := got.CreatedAt
	assert.False(t, created.IsZero())

	require.NoError(t, store.Save(ctx, domain.Source{ID: "b", Name: "Wiki 2", Type: "notion"}))
	got, err = store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, created, got.CreatedAt)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Archive", list[0].Name)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Save(ctx, domain.Source{}), domain.ErrInvalidInput)
}

func TestSyncStateStore(t *testing.T) {
	store := NewSyncStateStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, domain.SyncState{SourceID: "s", Cursor: "c1"}))
	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.Cursor)

	require.NoError(t, store.Delete(ctx, "s"))
	_, err = store.Get(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCredentialsStore(t *testing.T) {
	store := NewCredentialsStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, domain.Credentials{ID: "x"}), domain.ErrInvalidInput)
	require.NoError(t, store.Save(ctx, domain.Credentials{ID: "c1", SourceID: "s1", Token: "secret"}))

	got, err := store.GetBySourceID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	none, err := store.GetBySourceID(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigStore(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"nlp.max_keywords":       int64(12),
		"tagging.min_confidence": 0.4,
		"tagging.property_names": []any{"Tags", 3, "Area"},
	})

	assert.Equal(t, 12, store.GetInt("nlp.max_keywords"))
	assert.InDelta(t, 0.4, store.GetFloat("tagging.min_confidence"), 1e-9)
	assert.InDelta(t, 12.0, store.GetFloat("nlp.max_keywords"), 1e-9)
	assert.Equal(t, []string{"Tags", "Area"}, store.GetStringSlice("tagging.property_names"))
	assert.Equal(t, ":memory:", store.Path())

	require.NoError(t, store.Set("llm.provider", "openai"))
	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.False(t, store.GetBool("llm.provider"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}
