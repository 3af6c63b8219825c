package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	p := New()
	text := "Notion pages are great. Notion databases organise pages. Notion is a workspace."

	t.Run("ranked by score", func(t *testing.T) {
		kw := p.Keywords(text, 2)
		require.Len(t, kw, 2)
		assert.Equal(t, "notion", kw[0].Term)
		assert.Equal(t, 3, kw[0].Count)
		assert.Equal(t, "pages", kw[1].Term)
		assert.Equal(t, 2, kw[1].Count)
		assert.Greater(t, kw[0].Score, kw[1].Score)
	})

	t.Run("all terms", func(t *testing.T) {
		kw := p.Keywords(text, 0)
		assert.Len(t, kw, 6)
	})

	t.Run("stopwords, numbers and short tokens skipped", func(t *testing.T) {
		kw := p.Keywords("the of 2024 ab go", 0)
		assert.Empty(t, kw)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, p.Keywords("", 5))
	})

	t.Run("stems merged", func(t *testing.T) {
		kw := p.Keywords("planning planning planned", 0)
		require.Len(t, kw, 1)
		assert.Equal(t, "planning", kw[0].Term)
		assert.Equal(t, 3, kw[0].Count)
	})
}
