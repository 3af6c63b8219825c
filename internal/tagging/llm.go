package tagging

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// maxClassifyChars bounds the content sent for classification.
const maxClassifyChars = 4000

var listPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])?\s*`)

const defaultClassifyPrompt = "Suggest at most %d short topic tags for the following text. " +
	"Reply with the tags separated by commas and nothing else.\n\n%s"

func (t *Tagger) llmTags(ctx context.Context, text string) ([]domain.Tag, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	template := defaultClassifyPrompt
	if t.prompts != nil {
		if p, err := t.prompts.Load(driven.PromptClassify); err == nil && p != "" {
			template = p
		}
	}

	if len(text) > maxClassifyChars {
		text = truncateRunes(text, maxClassifyChars)
	}
	prompt := fmt.Sprintf(template, DefaultLLMTags, text)

	reply, err := t.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 64})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	names := parseTagList(reply)
	if len(names) > DefaultLLMTags {
		names = names[:DefaultLLMTags]
	}
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		tags = append(tags, newTag(name, domain.TagSourceLLM, llmConfidence))
	}
	return tags, nil
}

// parseTagList splits a model reply on commas and newlines, dropping list
// markers, quotes and empty entries.
func parseTagList(reply string) []string {
	fields := strings.FieldsFunc(reply, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimSpace(listPrefix.ReplaceAllString(f, ""))
		f = strings.Trim(f, "\"'`#")
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
