package nlp

import (
	"context"
	"math"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

const (
	// DefaultMaxKeywords is the number of keywords kept by Analyze.
	DefaultMaxKeywords = 10

	// DefaultSummarySentences is the extractive summary length.
	DefaultSummarySentences = 3

	// DefaultLanguage is used for stemming when detection is unreliable.
	DefaultLanguage = "en"

	// wordsPerMinute drives the reading time estimate.
	wordsPerMinute = 200

	// summaryMaxChars bounds generated summaries.
	summaryMaxChars = 600
)

// Processor is the text processor. It is safe for concurrent use.
type Processor struct {
	stopwords        map[string]struct{}
	stemming         bool
	language         string
	maxKeywords      int
	summarySentences int
	llm              driven.LLMService
	sanitizer        *bluemonday.Policy
}

// Option configures a Processor.
type Option func(*Processor)

// WithStopwords adds words to the built-in stopword list.
func WithStopwords(words ...string) Option {
	return func(p *Processor) {
		for _, w := range words {
			p.stopwords[fold(w)] = struct{}{}
		}
	}
}

// WithStemming enables or disables Snowball stemming.
func WithStemming(enabled bool) Option {
	return func(p *Processor) {
		p.stemming = enabled
	}
}

// WithLanguage sets the fallback language (ISO 639-1) for stemming.
func WithLanguage(code string) Option {
	return func(p *Processor) {
		if code != "" {
			p.language = code
		}
	}
}

// WithMaxKeywords sets how many keywords Analyze keeps.
func WithMaxKeywords(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxKeywords = n
		}
	}
}

// WithSummarySentences sets the extractive summary length.
func WithSummarySentences(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.summarySentences = n
		}
	}
}

// WithLLM enables generated summaries.
func WithLLM(llm driven.LLMService) Option {
	return func(p *Processor) {
		p.llm = llm
	}
}

// New creates a text processor.
func New(opts ...Option) *Processor {
	p := &Processor{
		stopwords:        defaultStopwords(),
		stemming:         true,
		language:         DefaultLanguage,
		maxKeywords:      DefaultMaxKeywords,
		summarySentences: DefaultSummarySentences,
		sanitizer:        bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the whole pipeline over text.
// Empty text yields an empty analysis with language "und".
func (p *Processor) Analyze(ctx context.Context, text string) (*domain.TextAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := p.Clean(text)
	lang, confidence := p.DetectLanguage(clean)
	words := len(p.Tokenize(clean))

	analysis := &domain.TextAnalysis{
		Language:           lang,
		LanguageConfidence: confidence,
		WordCount:          words,
		SentenceCount:      len(p.Sentences(clean)),
		ReadingTime:        readingTime(words),
		Keywords:           p.Keywords(clean, p.maxKeywords),
	}

	summary, err := p.Summarize(ctx, clean, p.summarySentences)
	if err != nil {
		return nil, err
	}
	analysis.Summary = summary

	logger.Debug("Analysed %d words (%s), %d keywords", words, lang, len(analysis.Keywords))
	return analysis, nil
}

func readingTime(words int) time.Duration {
	if words == 0 {
		return 0
	}
	minutes := float64(words) / wordsPerMinute
	return time.Duration(math.Round(minutes*60)) * time.Second
}
