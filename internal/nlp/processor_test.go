package nlp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

const sample = "Notion stores pages. The weather was nice yesterday. " +
	"Notion pages link to other Notion pages. Lunch was fine."

type mockLLM struct {
	summary string
	err     error
	calls   int
}

var _ driven.LLMService = (*mockLLM)(nil)

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return m.summary, m.err
}

func (m *mockLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.summary, m.err
}

func (m *mockLLM) Summarise(_ context.Context, _ string, _ int) (string, error) {
	m.calls++
	return m.summary, m.err
}

func (m *mockLLM) ModelName() string            { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := New()
		assert.Equal(t, DefaultMaxKeywords, p.maxKeywords)
		assert.Equal(t, DefaultSummarySentences, p.summarySentences)
		assert.Equal(t, DefaultLanguage, p.language)
		assert.True(t, p.stemming)
		assert.Nil(t, p.llm)
	})

	t.Run("options", func(t *testing.T) {
		llm := &mockLLM{}
		p := New(
			WithMaxKeywords(3),
			WithSummarySentences(2),
			WithLanguage("fr"),
			WithStemming(false),
			WithStopwords("Notion"),
			WithLLM(llm),
		)
		assert.Equal(t, 3, p.maxKeywords)
		assert.Equal(t, 2, p.summarySentences)
		assert.Equal(t, "fr", p.language)
		assert.False(t, p.stemming)
		assert.True(t, p.IsStopword("notion"))
		assert.Same(t, llm, p.llm)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithMaxKeywords(0), WithSummarySentences(-1), WithLanguage(""))
		assert.Equal(t, DefaultMaxKeywords, p.maxKeywords)
		assert.Equal(t, DefaultSummarySentences, p.summarySentences)
		assert.Equal(t, DefaultLanguage, p.language)
	})
}

func TestAnalyze(t *testing.T) {
	p := New(WithSummarySentences(1))

	analysis, err := p.Analyze(context.Background(), sample)
	require.NoError(t, err)

	assert.Equal(t, 18, analysis.WordCount)
	assert.Equal(t, 4, analysis.SentenceCount)
	assert.Equal(t, 5*time.Second, analysis.ReadingTime)
	require.NotEmpty(t, analysis.Keywords)
	assert.Equal(t, "notion", analysis.Keywords[0].Term)
	assert.Equal(t, "Notion pages link to other Notion pages.", analysis.Summary)
}

func TestAnalyze_Empty(t *testing.T) {
	analysis, err := New().Analyze(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, Undetermined, analysis.Language)
	assert.Zero(t, analysis.WordCount)
	assert.Zero(t, analysis.ReadingTime)
	assert.Empty(t, analysis.Keywords)
	assert.Empty(t, analysis.Summary)
}

func TestAnalyze_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Analyze(ctx, sample)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  time.Duration
	}{
		{0, 0},
		{200, time.Minute},
		{100, 30 * time.Second},
		{1000, 5 * time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, readingTime(tt.words), "words=%d", tt.words)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		s, err := New().Summarize(ctx, "", 2)
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("short text returned whole", func(t *testing.T) {
		s, err := New().Summarize(ctx, "One sentence. Another one.", 3)
		require.NoError(t, err)
		assert.Equal(t, "One sentence. Another one.", s)
	})

	t.Run("extractive picks weightiest sentence", func(t *testing.T) {
		s, err := New().Summarize(ctx, sample, 1)
		require.NoError(t, err)
		assert.Equal(t, "Notion pages link to other Notion pages.", s)
	})

	t.Run("extractive keeps document order", func(t *testing.T) {
		s, err := New().Summarize(ctx, sample, 2)
		require.NoError(t, err)
		assert.Equal(t, "Notion stores pages. Notion pages link to other Notion pages.", s)
	})

	t.Run("llm summary", func(t *testing.T) {
		llm := &mockLLM{summary: "  A generated summary.  "}
		s, err := New(WithLLM(llm)).Summarize(ctx, sample, 1)
		require.NoError(t, err)
		assert.Equal(t, "A generated summary.", s)
		assert.Equal(t, 1, llm.calls)
	})

	t.Run("llm failure falls back", func(t *testing.T) {
		llm := &mockLLM{err: errors.New("unavailable")}
		s, err := New(WithLLM(llm)).Summarize(ctx, sample, 1)
		require.NoError(t, err)
		assert.Equal(t, "Notion pages link to other Notion pages.", s)
	})

	t.Run("llm empty output falls back", func(t *testing.T) {
		var buf bytes.Buffer
		logger.SetOutput(&buf)
		defer logger.SetOutput(os.Stderr)

		s, err := New(WithLLM(&mockLLM{summary: "  "})).Summarize(ctx, sample, 1)
		require.NoError(t, err)
		assert.Equal(t, "Notion pages link to other Notion pages.", s)
		assert.Contains(t, buf.String(), "empty summary")
		assert.NotContains(t, buf.String(), "<nil>")
	})
}
