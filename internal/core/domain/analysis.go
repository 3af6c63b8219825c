package domain

import "time"

// Keyword is a salient term extracted from text.
type Keyword struct {
	// Term is the most frequent surface form of the keyword.
	Term string `json:"term"`

	// Score is the relative weight, higher is more salient.
	Score float64 `json:"score"`

	// Count is the number of occurrences of the stem.
	Count int `json:"count"`
}

// TextAnalysis is the output of the text processor for one text.
type TextAnalysis struct {
	// Language is the ISO 639-1 code, or "und" if undetermined.
	Language string `json:"language"`

	// LanguageConfidence is in the range [0, 1].
	LanguageConfidence float64 `json:"language_confidence"`

	WordCount     int           `json:"word_count"`
	SentenceCount int           `json:"sentence_count"`
	ReadingTime   time.Duration `json:"reading_time"`

	// Keywords are ordered by descending score.
	Keywords []Keyword `json:"keywords,omitempty"`

	// Summary is an extractive or generated summary.
	Summary string `json:"summary,omitempty"`
}

// KeywordTerms returns the keyword terms in score order.
func (a *TextAnalysis) KeywordTerms() []string {
	if a == nil {
		return nil
	}
	terms := make([]string, len(a.Keywords))
	for i, k := range a.Keywords {
		terms[i] = k.Term
	}
	return terms
}
