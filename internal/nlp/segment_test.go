package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	p := New()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"collapses spaces", "hello \t  world", "hello world"},
		{"nfkc", "Ｈｅｌｌｏ\t\tthere", "Hello there"},
		{"trims lines", "  one  \n  two  ", "one\ntwo"},
		{"blank lines", "one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"crlf", "one\r\ntwo", "one\ntwo"},
		{"html", "<p>Hello   <b>world</b></p>", "Hello world"},
		{"entities", "<p>Tom &amp; Jerry</p>", "Tom & Jerry"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Clean(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	p := New()

	t.Run("words and numbers", func(t *testing.T) {
		assert.Equal(t, []string{"hello", "world", "it's", "2024"},
			p.Tokenize("Hello, World! It's 2024."))
	})

	t.Run("case folding", func(t *testing.T) {
		assert.Equal(t, []string{"école", "notion"}, p.Tokenize("ÉCOLE Notion"))
	})

	t.Run("markdown punctuation dropped", func(t *testing.T) {
		assert.Equal(t, []string{"title", "item"}, p.Tokenize("## Title\n- item"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, p.Tokenize(""))
	})
}

func TestTerms(t *testing.T) {
	p := New(WithStemming(false))
	assert.Equal(t, []string{"notion", "pages", "great"}, p.Terms("Notion pages are great"))
}

func TestSentences(t *testing.T) {
	p := New()

	t.Run("punctuation and lines", func(t *testing.T) {
		got := p.Sentences("# Title\nFirst sentence here. Second one!\n- item text")
		assert.Equal(t, []string{"Title", "First sentence here.", "Second one!", "item text"}, got)
	})

	t.Run("todo markers", func(t *testing.T) {
		assert.Equal(t, []string{"ship it"}, p.Sentences("- [x] ship it"))
	})

	t.Run("numbered list", func(t *testing.T) {
		assert.Equal(t, []string{"first", "second"}, p.Sentences("1. first\n2. second"))
	})

	t.Run("no letters", func(t *testing.T) {
		assert.Empty(t, p.Sentences("---\n***"))
	})
}

func TestIsStopword(t *testing.T) {
	p := New()
	assert.True(t, p.IsStopword("the"))
	assert.True(t, p.IsStopword("don't"))
	assert.False(t, p.IsStopword("notion"))
}
