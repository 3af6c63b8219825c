package nlp

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// minKeywordRunes excludes very short tokens from keywords.
const minKeywordRunes = 3

type termStat struct {
	stem     string
	surfaces map[string]int
	count    int
	score    float64
}

// surface returns the most frequent original form, alphabetical on ties.
func (s *termStat) surface() string {
	best, bestCount := "", 0
	for form, n := range s.surfaces {
		if n > bestCount || (n == bestCount && form < best) {
			best, bestCount = form, n
		}
	}
	return best
}

// termStats counts content terms by stem and scores each one as its
// relative frequency weighted by log(1 + length), so longer terms win ties
// against short common ones.
func (p *Processor) termStats(text string) map[string]*termStat {
	lang := p.stemLanguage(text)
	stats := make(map[string]*termStat)
	total := 0
	for _, tok := range p.Tokenize(text) {
		if p.IsStopword(tok) || isNumeric(tok) || utf8.RuneCountInString(tok) < minKeywordRunes {
			continue
		}
		stem := p.stem(tok, lang)
		st, ok := stats[stem]
		if !ok {
			st = &termStat{stem: stem, surfaces: make(map[string]int)}
			stats[stem] = st
		}
		st.count++
		st.surfaces[tok]++
		total++
	}
	for _, st := range stats {
		length := utf8.RuneCountInString(st.surface())
		st.score = float64(st.count) / float64(total) * math.Log(1+float64(length))
	}
	return stats
}

// Keywords returns the n highest scoring terms of text, best first.
// n <= 0 returns all terms.
func (p *Processor) Keywords(text string, n int) []domain.Keyword {
	stats := p.termStats(text)
	if len(stats) == 0 {
		return nil
	}

	ranked := make([]*termStat, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, st)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].surface() < ranked[j].surface()
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]domain.Keyword, len(ranked))
	for i, st := range ranked {
		out[i] = domain.Keyword{
			Term:  st.surface(),
			Score: st.score,
			Count: st.count,
		}
	}
	return out
}
