package tagging

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/logger"
	"github.com/custodia-labs/notion-nlp/internal/nlp"
)

// Defaults.
const (
	DefaultMinConfidence = 0.3
	DefaultKeywordTags   = 3
	DefaultInheritFactor = 0.5
	DefaultLLMTags       = 5

	propertyConfidence = 1.0
	llmConfidence      = 0.6

	// Keyword tag confidence is scaled into [keywordMin, keywordMax].
	keywordMin = 0.3
	keywordMax = 0.7
)

// DefaultPropertyNames are the Notion properties read for tags.
var DefaultPropertyNames = []string{"Tags", "Category", "Categories", "Type", "Status"}

// TextAnalyzer is the part of the text processor the tagger uses.
type TextAnalyzer interface {
	Tokenize(text string) []string
	Keywords(text string, n int) []domain.Keyword
}

var _ TextAnalyzer = (*nlp.Processor)(nil)

// Tagger assigns tags to documents. It is safe for concurrent use.
type Tagger struct {
	rules         atomic.Pointer[[]compiledRule]
	analyzer      TextAnalyzer
	keywordTags   int
	propertyNames map[string]struct{}
	minConfidence float64
	inheritFactor float64
	llm           driven.LLMService
	prompts       driven.PromptStore

	initial []Rule
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithRules sets the initial rules. Invalid rules are logged and ignored;
// call SetRules directly to get the validation error.
func WithRules(rules []Rule) Option {
	return func(t *Tagger) {
		t.initial = rules
	}
}

// WithTextAnalyzer sets the tokenizer and keyword extractor.
func WithTextAnalyzer(a TextAnalyzer) Option {
	return func(t *Tagger) {
		if a != nil {
			t.analyzer = a
		}
	}
}

// WithKeywordTags sets how many top keywords become tags. Zero disables
// keyword tags.
func WithKeywordTags(n int) Option {
	return func(t *Tagger) {
		if n >= 0 {
			t.keywordTags = n
		}
	}
}

// WithPropertyNames sets the document properties read for tags.
func WithPropertyNames(names ...string) Option {
	return func(t *Tagger) {
		t.propertyNames = foldNames(names)
	}
}

// WithMinConfidence sets the threshold below which tags are dropped.
func WithMinConfidence(c float64) Option {
	return func(t *Tagger) {
		if c >= 0 && c <= 1 {
			t.minConfidence = c
		}
	}
}

// WithInheritFactor sets the per-level confidence multiplier for
// inherited tags.
func WithInheritFactor(f float64) Option {
	return func(t *Tagger) {
		if f > 0 && f <= 1 {
			t.inheritFactor = f
		}
	}
}

// WithLLM enables language model classification using the classify prompt.
func WithLLM(llm driven.LLMService, prompts driven.PromptStore) Option {
	return func(t *Tagger) {
		t.llm = llm
		t.prompts = prompts
	}
}

// New creates a tagger.
func New(opts ...Option) *Tagger {
	t := &Tagger{
		analyzer:      nlp.New(),
		keywordTags:   DefaultKeywordTags,
		propertyNames: foldNames(DefaultPropertyNames),
		minConfidence: DefaultMinConfidence,
		inheritFactor: DefaultInheritFactor,
	}
	for _, opt := range opts {
		opt(t)
	}

	empty := []compiledRule{}
	t.rules.Store(&empty)
	if len(t.initial) > 0 {
		if err := t.SetRules(t.initial); err != nil {
			logger.Warn("Ignoring invalid tag rules: %v", err)
		}
		t.initial = nil
	}
	return t
}

// SetRules validates rules and replaces the current set atomically.
// On error the current rules are kept.
func (t *Tagger) SetRules(rules []Rule) error {
	compiled, err := compileRules(rules, t.analyzer.Tokenize)
	if err != nil {
		return err
	}
	t.rules.Store(&compiled)
	logger.Debug("Loaded %d tag rules", len(compiled))
	return nil
}

// Rules returns a copy of the current rules.
func (t *Tagger) Rules() []Rule {
	compiled := *t.rules.Load()
	out := make([]Rule, len(compiled))
	for i, c := range compiled {
		out[i] = c.Rule
	}
	return out
}

// Tag computes the tags of doc from its properties, the rules, its
// keywords and, when configured, the language model.
func (t *Tagger) Tag(ctx context.Context, doc *domain.Document) ([]domain.Tag, error) {
	if doc == nil {
		return nil, fmt.Errorf("tag document: %w: nil document", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := documentText(doc)
	var candidates []domain.Tag
	candidates = append(candidates, t.propertyTags(doc)...)
	candidates = append(candidates, t.ruleTags(text)...)
	candidates = append(candidates, t.keywordTagsFor(doc, text)...)

	if t.llm != nil {
		tags, err := t.llmTags(ctx, text)
		switch {
		case err == nil:
			candidates = append(candidates, tags...)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			logger.Warn("LLM tagging failed for %s: %v", doc.ID, err)
		}
	}

	tags := t.finish(merge(candidates))
	logger.Debug("Tagged %s with %d tags", doc.ID, len(tags))
	return tags, nil
}

// Inherit adds the tags of ancestors to own. ancestors is ordered nearest
// first; each level multiplies confidence by the inherit factor. Tags
// already present in own, or from a nearer ancestor, are not repeated.
// Inherited tags below the minimum confidence are dropped.
func (t *Tagger) Inherit(own []domain.Tag, ancestors [][]domain.Tag) []domain.Tag {
	seen := make(map[string]struct{}, len(own))
	out := make([]domain.Tag, 0, len(own))
	for _, tag := range own {
		seen[tag.Slug] = struct{}{}
		out = append(out, tag)
	}

	var inherited []domain.Tag
	factor := 1.0
	for _, level := range ancestors {
		factor *= t.inheritFactor
		for _, tag := range level {
			if _, ok := seen[tag.Slug]; ok {
				continue
			}
			seen[tag.Slug] = struct{}{}
			tag.Source = domain.TagSourceInherited
			tag.Confidence *= factor
			inherited = append(inherited, tag)
		}
	}

	return append(out, t.finish(inherited)...)
}

func (t *Tagger) propertyTags(doc *domain.Document) []domain.Tag {
	var tags []domain.Tag
	for name, values := range doc.Properties {
		if _, ok := t.propertyNames[strings.ToLower(name)]; !ok {
			continue
		}
		for _, v := range values {
			tags = append(tags, newTag(v, domain.TagSourceProperty, propertyConfidence))
		}
	}
	return tags
}

func (t *Tagger) ruleTags(text string) []domain.Tag {
	rules := *t.rules.Load()
	if len(rules) == 0 {
		return nil
	}
	tokens := t.analyzer.Tokenize(text)

	var tags []domain.Tag
	for i := range rules {
		if c := rules[i].match(tokens, text); c > 0 {
			tags = append(tags, newTag(rules[i].Name, domain.TagSourceRule, c))
		}
	}
	return tags
}

func (t *Tagger) keywordTagsFor(doc *domain.Document, text string) []domain.Tag {
	if t.keywordTags == 0 {
		return nil
	}

	var keywords []domain.Keyword
	if doc.Analysis != nil && len(doc.Analysis.Keywords) > 0 {
		keywords = doc.Analysis.Keywords
		if len(keywords) > t.keywordTags {
			keywords = keywords[:t.keywordTags]
		}
	} else {
		keywords = t.analyzer.Keywords(text, t.keywordTags)
	}
	if len(keywords) == 0 {
		return nil
	}

	top := keywords[0].Score
	tags := make([]domain.Tag, 0, len(keywords))
	for _, kw := range keywords {
		c := keywordMax
		if top > 0 {
			c = keywordMin + (keywordMax-keywordMin)*kw.Score/top
		}
		tags = append(tags, newTag(kw.Term, domain.TagSourceKeyword, c))
	}
	return tags
}

// finish drops tags below the minimum confidence and sorts by confidence,
// then slug.
func (t *Tagger) finish(tags []domain.Tag) []domain.Tag {
	out := tags[:0:0]
	for _, tag := range tags {
		if tag.Slug == "" || tag.Confidence < t.minConfidence {
			continue
		}
		out = append(out, tag)
	}
	sortTags(out)
	return out
}

func newTag(name string, source domain.TagSource, confidence float64) domain.Tag {
	name = strings.TrimSpace(name)
	return domain.Tag{
		Name:       name,
		Slug:       Slug(name),
		Source:     source,
		Confidence: confidence,
	}
}

// merge collapses tags with the same slug, keeping the most confident.
// The first tag wins ties.
func merge(tags []domain.Tag) []domain.Tag {
	index := make(map[string]int, len(tags))
	var out []domain.Tag
	for _, tag := range tags {
		if tag.Slug == "" {
			continue
		}
		i, ok := index[tag.Slug]
		if !ok {
			index[tag.Slug] = len(out)
			out = append(out, tag)
			continue
		}
		if tag.Confidence > out[i].Confidence {
			out[i] = tag
		}
	}
	return out
}

func sortTags(tags []domain.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Confidence != tags[j].Confidence {
			return tags[i].Confidence > tags[j].Confidence
		}
		return tags[i].Slug < tags[j].Slug
	})
}

func documentText(doc *domain.Document) string {
	if doc.Title == "" {
		return doc.Content
	}
	return doc.Title + "\n" + doc.Content
}

func foldNames(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	return m
}
