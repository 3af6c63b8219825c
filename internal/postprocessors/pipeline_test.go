package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// stubStage appends a chunk tagged with its name, or fails with err.
type stubStage struct {
	name  string
	err   error
	calls int
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append(chunks, domain.Chunk{
		ID:         doc.ID + "/" + s.name,
		DocumentID: doc.ID,
		Content:    s.name,
		Position:   len(chunks),
	}), nil
}

func onboardingPage() *domain.Document {
	return &domain.Document{ID: "page-1", Title: "Onboarding", Content: "Welcome aboard"}
}

func TestPipeline_Empty(t *testing.T) {
	p := NewPipeline()
	assert.Equal(t, 0, p.Len())
	assert.Empty(t, p.Stages())

	chunks, err := p.Process(context.Background(), onboardingPage())
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestPipeline_NilDocument(t *testing.T) {
	_, err := NewPipeline(&stubStage{name: "a"}).Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	first := &stubStage{name: "first"}
	second := &stubStage{name: "second"}
	p := NewPipeline(first)
	p.Add(second)

	assert.Equal(t, []string{"first", "second"}, p.Stages())

	chunks, err := p.Process(context.Background(), onboardingPage())
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "page-1/first", chunks[0].ID)
	assert.Equal(t, "page-1/second", chunks[1].ID)
	assert.Equal(t, 1, chunks[1].Position)
}

func TestPipeline_StageErrorStops(t *testing.T) {
	boom := errors.New("boom")
	failing := &stubStage{name: "tagger", err: boom}
	after := &stubStage{name: "after"}

	_, err := NewPipeline(&stubStage{name: "chunker"}, failing, after).
		Process(context.Background(), onboardingPage())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "tagger on page-1")
	assert.Equal(t, 0, after.calls)
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := &stubStage{name: "chunker"}
	_, err := NewPipeline(stage).Process(ctx, onboardingPage())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stage.calls)
}
