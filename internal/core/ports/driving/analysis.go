package driving

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// AnalysisService analyses text that is not part of a synced source.
type AnalysisService interface {
	// AnalyzeText runs the text processor and tagger over text.
	AnalyzeText(ctx context.Context, text string) (*AnalysisResult, error)

	// AnalyzeFile normalises a local file by MIME type, then analyses it.
	AnalyzeFile(ctx context.Context, path string) (*AnalysisResult, error)
}

// AnalysisResult is the output of an ad-hoc analysis.
type AnalysisResult struct {
	Title    string
	Analysis *domain.TextAnalysis
	Tags     []domain.Tag
	Outline  []string
}
