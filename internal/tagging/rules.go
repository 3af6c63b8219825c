package tagging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Rule confidences.
const (
	patternConfidence = 0.9
	keywordBase       = 0.5
)

var validate = validator.New()

// Rule assigns the tag Name when a document matches its keywords or
// pattern. A rule needs at least one of the two.
type Rule struct {
	// Name is the tag name applied on a match.
	Name string `toml:"name" yaml:"name" validate:"required,max=100" jsonschema:"required,minLength=1,maxLength=100"`

	// Keywords are matched as whole words or phrases, case-insensitively.
	Keywords []string `toml:"keywords" yaml:"keywords" validate:"required_without=Pattern,dive,required"`

	// MinMatches is the number of keywords that must match (default 1).
	MinMatches int `toml:"min_matches" yaml:"min_matches" validate:"gte=0" jsonschema:"minimum=0"`

	// Pattern is a regular expression matched against title and content.
	Pattern string `toml:"pattern" yaml:"pattern" validate:"required_without=Keywords" jsonschema:"format=regex"`
}

// RuleSet is the on-disk rules file layout.
type RuleSet struct {
	Rules []Rule `toml:"rules" yaml:"rules" jsonschema:"required"`
}

// RulesSchema returns the JSON Schema of the rules file, for editors that
// validate YAML against a schema.
func RulesSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		FieldNameTag:               "yaml",
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}
	schema := r.Reflect(&RuleSet{})
	schema.Title = "notion-nlp tagging rules"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rules schema: %w", err)
	}
	return data, nil
}

type compiledRule struct {
	Rule
	slug    string
	phrases [][]string
	re      *regexp.Regexp
}

// LoadRules reads rules from a .toml, .yaml or .yml file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var set RuleSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &set)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		return nil, fmt.Errorf("rules file %s: %w", path, domain.ErrUnsupportedType)
	}
	if err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", path, err)
	}

	if _, err := compileRules(set.Rules, nil); err != nil {
		return nil, err
	}
	return set.Rules, nil
}

// compileRules validates rules and prepares keyword phrases with tokenize.
// A nil tokenize only validates.
func compileRules(rules []Rule, tokenize func(string) []string) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("rule %d: %w: missing name", i+1, domain.ErrInvalidInput)
		}
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("rule %q: %w: %v", name, domain.ErrInvalidInput, err)
		}
		if len(r.Keywords) == 0 && r.Pattern == "" {
			return nil, fmt.Errorf("rule %q: %w: needs keywords or a pattern", name, domain.ErrInvalidInput)
		}

		c := compiledRule{Rule: r, slug: Slug(name)}
		c.Name = name
		if c.MinMatches <= 0 {
			c.MinMatches = 1
		}
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w: invalid pattern: %v", name, domain.ErrInvalidInput, err)
			}
			c.re = re
		}
		if tokenize != nil {
			for _, kw := range r.Keywords {
				if phrase := tokenize(kw); len(phrase) > 0 {
					c.phrases = append(c.phrases, phrase)
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// match returns the rule's confidence for the document, or 0.
// tokens is the tokenized title and content, text the raw text.
func (c *compiledRule) match(tokens []string, text string) float64 {
	var confidence float64
	if c.re != nil && c.re.MatchString(text) {
		confidence = patternConfidence
	}
	if len(c.phrases) > 0 {
		matched := 0
		for _, phrase := range c.phrases {
			if containsPhrase(tokens, phrase) {
				matched++
			}
		}
		if matched >= c.MinMatches {
			score := keywordBase + keywordBase*float64(matched)/float64(len(c.phrases))
			confidence = max(confidence, score)
		}
	}
	return confidence
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		for j, p := range phrase {
			if tokens[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}
