package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/nlp"
	"github.com/custodia-labs/notion-nlp/internal/postprocessors/analyser"
	"github.com/custodia-labs/notion-nlp/internal/postprocessors/chunker"
	"github.com/custodia-labs/notion-nlp/internal/postprocessors/tagger"
	"github.com/custodia-labs/notion-nlp/internal/tagging"
)

// DefaultOrder is the standard processing order.
var DefaultOrder = []string{"chunker", "analyser", "tagger"}

// Dependencies are shared collaborators for the built-in processors.
// Nil fields are built from processor config instead.
type Dependencies struct {
	TextProcessor *nlp.Processor
	Tagger        *tagging.Tagger
}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry, deps Dependencies) {
	r.Register("chunker", buildChunker)
	r.Register("analyser", func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildAnalyser(cfg, deps)
	})
	r.Register("tagger", func(cfg map[string]any) (driven.PostProcessor, error) {
		return buildTagger(cfg, deps)
	})
}

// BuildPipeline builds the named processors, in order, into a pipeline.
// cfg maps a processor name to its config.
func BuildPipeline(r *Registry, names []string, cfg map[string]map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		proc, err := r.Build(name, cfg[name])
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
	}

	return chunker.New(opts...), nil
}

// buildAnalyser creates the analyser. Supported config keys, used only
// when no shared text processor is given:
//   - max_keywords (int)
//   - summary_sentences (int)
//   - stemming (bool)
//
// chunk_keywords (int) always applies.
func buildAnalyser(cfg map[string]any, deps Dependencies) (driven.PostProcessor, error) {
	text := deps.TextProcessor
	if text == nil {
		text = nlp.New(textOptions(cfg)...)
	}

	var opts []analyser.Option
	if _, ok := cfg["chunk_keywords"]; ok {
		opts = append(opts, analyser.WithChunkKeywords(getIntFromConfig(cfg, "chunk_keywords")))
	}
	return analyser.New(text, opts...), nil
}

// buildTagger creates the tagger stage. Supported config keys, used only
// when no shared tagger is given:
//   - rules_file (string)
//   - min_confidence (float)
//   - keyword_tags (int)
func buildTagger(cfg map[string]any, deps Dependencies) (driven.PostProcessor, error) {
	if deps.Tagger != nil {
		return tagger.New(deps.Tagger), nil
	}

	var opts []tagging.Option
	if deps.TextProcessor != nil {
		opts = append(opts, tagging.WithTextAnalyzer(deps.TextProcessor))
	}
	if path := getStringFromConfig(cfg, "rules_file"); path != "" {
		rules, err := tagging.LoadRules(path)
		if err != nil {
			return nil, fmt.Errorf("tagger rules: %w", err)
		}
		opts = append(opts, tagging.WithRules(rules))
	}
	if c, ok := getFloatFromConfig(cfg, "min_confidence"); ok {
		opts = append(opts, tagging.WithMinConfidence(c))
	}
	if _, ok := cfg["keyword_tags"]; ok {
		opts = append(opts, tagging.WithKeywordTags(getIntFromConfig(cfg, "keyword_tags")))
	}
	return tagger.New(tagging.New(opts...)), nil
}

func textOptions(cfg map[string]any) []nlp.Option {
	var opts []nlp.Option
	if n := getIntFromConfig(cfg, "max_keywords"); n > 0 {
		opts = append(opts, nlp.WithMaxKeywords(n))
	}
	if n := getIntFromConfig(cfg, "summary_sentences"); n > 0 {
		opts = append(opts, nlp.WithSummarySentences(n))
	}
	if v, ok := cfg["stemming"].(bool); ok {
		opts = append(opts, nlp.WithStemming(v))
	}
	return opts
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getFloatFromConfig(cfg map[string]any, key string) (float64, bool) {
	switch v := cfg[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func getStringFromConfig(cfg map[string]any, key string) string {
	s, _ := cfg[key].(string)
	return s
}
