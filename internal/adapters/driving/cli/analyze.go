package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
)

// maxStdinBytes bounds text read from standard input.
const maxStdinBytes = 10 << 20

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyse a local file or standard input",
	Long: `Run language detection, keyword extraction, summarisation and tagging
over a local file without storing anything. Markdown, HTML and plain text
files are supported. With no argument or "-", text is read from stdin.

Examples:
  notion-nlp analyze notes.md
  pbpaste | notion-nlp analyze`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	var (
		result *driving.AnalysisResult
		err    error
	)
	if len(args) == 0 || args[0] == "-" {
		data, readErr := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxStdinBytes))
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		if strings.TrimSpace(string(data)) == "" {
			return errors.New("no text to analyse")
		}
		result, err = analysisService.AnalyzeText(cmd.Context(), string(data))
	} else {
		result, err = analysisService.AnalyzeFile(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.Title != "" {
		cmd.Printf("Title: %s\n\n", result.Title)
	}
	printAnalysis(cmd, result.Analysis)
	if len(result.Tags) > 0 {
		cmd.Println("\nTags:")
		printTags(cmd, result.Tags)
	}
	if len(result.Outline) > 0 {
		cmd.Println("\nOutline:")
		for _, h := range result.Outline {
			cmd.Printf("  %s\n", h)
		}
	}
	return nil
}

func printAnalysis(cmd *cobra.Command, a *domain.TextAnalysis) {
	if a == nil {
		cmd.Println("  No analysis.")
		return
	}
	cmd.Printf("  Language:     %s (%.0f%%)\n", a.Language, a.LanguageConfidence*100)
	cmd.Printf("  Words:        %d\n", a.WordCount)
	cmd.Printf("  Sentences:    %d\n", a.SentenceCount)
	cmd.Printf("  Reading time: %s\n", a.ReadingTime.Round(time.Second))
	if terms := a.KeywordTerms(); len(terms) > 0 {
		cmd.Printf("  Keywords:     %s\n", strings.Join(terms, ", "))
	}
	if a.Summary != "" {
		cmd.Printf("\n  Summary:\n    %s\n", a.Summary)
	}
}

func printTags(cmd *cobra.Command, tags []domain.Tag) {
	for _, t := range tags {
		cmd.Printf("  %-24s %-10s %.2f\n", t.Name, t.Source, t.Confidence)
	}
}

func tagNames(tags []domain.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
