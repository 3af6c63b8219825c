package tagging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

const tomlRules = `
[[rules]]
name = "Docs"
keywords = ["release notes", "changelog"]

[[rules]]
name = "API"
pattern = '\bAPI\b'
`

const yamlRules = `
rules:
  - name: Docs
    keywords: ["release notes", "changelog"]
    min_matches: 2
  - name: API
    pattern: '\bAPI\b'
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()

	t.Run("toml", func(t *testing.T) {
		rules, err := LoadRules(writeFile(t, dir, "rules.toml", tomlRules))
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "Docs", rules[0].Name)
		assert.Equal(t, []string{"release notes", "changelog"}, rules[0].Keywords)
		assert.Equal(t, `\bAPI\b`, rules[1].Pattern)
	})

	t.Run("yaml", func(t *testing.T) {
		rules, err := LoadRules(writeFile(t, dir, "rules.yaml", yamlRules))
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, 2, rules[0].MinMatches)
		assert.Equal(t, "API", rules[1].Name)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadRules(writeFile(t, dir, "rules.json", "{}"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := LoadRules(writeFile(t, dir, "bad.toml", "[[rules]\nname ="))
		assert.Error(t, err)
	})

	t.Run("invalid pattern names the rule", func(t *testing.T) {
		path := writeFile(t, dir, "regex.toml", "[[rules]]\nname = \"Bad\"\npattern = \"([\"\n")
		_, err := LoadRules(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), `rule "Bad"`)
	})
}

func TestCompileRules(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		_, err := compileRules([]Rule{{Keywords: []string{"x"}}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("nothing to match", func(t *testing.T) {
		_, err := compileRules([]Rule{{Name: "Empty"}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("negative min matches", func(t *testing.T) {
		_, err := compileRules([]Rule{{Name: "Docs", Keywords: []string{"x"}, MinMatches: -1}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("blank keyword", func(t *testing.T) {
		_, err := compileRules([]Rule{{Name: "Docs", Keywords: []string{"x", ""}}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), `rule "Docs"`)
	})

	t.Run("empty keyword list", func(t *testing.T) {
		_, err := compileRules([]Rule{{Name: "Docs", Keywords: []string{}}}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("defaults", func(t *testing.T) {
		rules, err := compileRules([]Rule{{Name: " Docs ", Keywords: []string{"Release Notes"}}}, New().analyzer.Tokenize)
		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "Docs", rules[0].Name)
		assert.Equal(t, "docs", rules[0].slug)
		assert.Equal(t, 1, rules[0].MinMatches)
		assert.Equal(t, [][]string{{"release", "notes"}}, rules[0].phrases)
	})
}

func TestRulesSchema(t *testing.T) {
	data, err := RulesSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "notion-nlp tagging rules", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "rules")
	assert.Contains(t, string(data), `"min_matches"`)
	assert.Contains(t, string(data), `"minLength": 1`)
}

func TestRuleMatch(t *testing.T) {
	tokenize := New().analyzer.Tokenize
	rules, err := compileRules([]Rule{
		{Name: "Docs", Keywords: []string{"release notes", "changelog"}},
		{Name: "Strict", Keywords: []string{"release notes", "changelog"}, MinMatches: 2},
		{Name: "API", Pattern: `\bAPI\b`},
		{Name: "Both", Keywords: []string{"api"}, Pattern: `\bAPI\b`},
	}, tokenize)
	require.NoError(t, err)

	text := "The release notes describe the API."
	tokens := tokenize(text)

	assert.InDelta(t, 0.75, rules[0].match(tokens, text), 1e-9)
	assert.Zero(t, rules[1].match(tokens, text))
	assert.InDelta(t, 0.9, rules[2].match(tokens, text), 1e-9)
	assert.InDelta(t, 1.0, rules[3].match(tokens, text), 1e-9)
	assert.Zero(t, rules[2].match(tokenize("apis"), "apis"))
}

func TestContainsPhrase(t *testing.T) {
	tokens := []string{"the", "release", "notes", "are", "out"}
	assert.True(t, containsPhrase(tokens, []string{"release", "notes"}))
	assert.True(t, containsPhrase(tokens, []string{"out"}))
	assert.False(t, containsPhrase(tokens, []string{"notes", "release"}))
	assert.False(t, containsPhrase(tokens, nil))
	assert.False(t, containsPhrase([]string{"a"}, []string{"a", "b"}))
}
