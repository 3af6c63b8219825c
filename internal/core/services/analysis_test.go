package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/normalisers"
)

func TestAnalysisService_AnalyzeText(t *testing.T) {
	svc := NewAnalysisService(nil, mockAnalyzer{}, mockTagger{})

	result, err := svc.AnalyzeText(context.Background(), "Kubernetes clusters need care")
	require.NoError(t, err)
	assert.Equal(t, 4, result.Analysis.WordCount)
	require.Len(t, result.Tags, 1)
	assert.Equal(t, "kubernetes", result.Tags[0].Slug)
	assert.Empty(t, result.Outline)
}

func TestAnalysisService_AnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	content := "# Guide\n\nDeploy the service.\n\n## Install\n\nRun the installer.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	svc := NewAnalysisService(normalisers.NewDefaultRegistry(), mockAnalyzer{}, nil)

	result, err := svc.AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Guide", result.Title)
	assert.Equal(t, []string{"Guide", "  Install"}, result.Outline)
	assert.Positive(t, result.Analysis.WordCount)
	assert.Nil(t, result.Tags)
}

func TestAnalysisService_AnalyzeFileErrors(t *testing.T) {
	dir := t.TempDir()
	svc := NewAnalysisService(normalisers.NewDefaultRegistry(), mockAnalyzer{}, mockTagger{})
	ctx := context.Background()

	_, err := svc.AnalyzeFile(ctx, dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AnalyzeFile(ctx, filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewAnalysisService(nil, mockAnalyzer{}, nil).AnalyzeFile(ctx, dir)
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("words here"), 0o600))
	failing := NewAnalysisService(normalisers.NewDefaultRegistry(), mockAnalyzer{err: errors.New("boom")}, nil)
	_, err = failing.AnalyzeFile(ctx, path)
	assert.ErrorContains(t, err, "boom")
}
