package nlp

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// Summarize returns a summary of text. With an LLM configured the generated
// summary is returned; if generation fails the extractive summary of at
// most n sentences is used instead.
func (p *Processor) Summarize(ctx context.Context, text string, n int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if n <= 0 {
		n = p.summarySentences
	}

	if p.llm != nil {
		summary, err := p.llm.Summarise(ctx, text, summaryMaxChars)
		summary = strings.TrimSpace(summary)
		switch {
		case err == nil && summary != "":
			return summary, nil
		case ctx.Err() != nil:
			return "", ctx.Err()
		case err != nil:
			logger.Warn("LLM summary failed, using extractive summary: %v", err)
		default:
			logger.Warn("LLM returned an empty summary, using extractive summary")
		}
	}

	return p.extractive(text, n), nil
}

// extractive picks the n sentences with the highest keyword weight and
// returns them in document order.
func (p *Processor) extractive(text string, n int) string {
	sentences := p.Sentences(text)
	if len(sentences) <= n {
		return strings.Join(sentences, " ")
	}

	stats := p.termStats(text)
	lang := p.stemLanguage(text)

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		var sum float64
		var terms int
		for _, tok := range p.Tokenize(s) {
			if p.IsStopword(tok) {
				continue
			}
			terms++
			if st, ok := stats[p.stem(tok, lang)]; ok {
				sum += st.score
			}
		}
		if terms > 0 {
			sum /= math.Sqrt(float64(terms))
		}
		ranked[i] = scored{index: i, score: sum}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	picked := ranked[:n]
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].index < picked[j].index
	})

	out := make([]string, len(picked))
	for i, s := range picked {
		out[i] = sentences[s.index]
	}
	return strings.Join(out, " ")
}
