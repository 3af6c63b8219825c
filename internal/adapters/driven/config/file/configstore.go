package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/config/typed"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// Configuration keys.
const (
	KeyNotionMaxDepth          = "notion.max_depth"
	KeyNotionRequestsPerSecond = "notion.requests_per_second"
	KeyNotionOAuthClientID     = "notion.oauth.client_id"
	KeyNotionOAuthSecret       = "notion.oauth.client_secret"
	KeyNotionOAuthRedirectURL  = "notion.oauth.redirect_url"
	KeyNLPMaxKeywords          = "nlp.max_keywords"
	KeyNLPSummarySentences     = "nlp.summary_sentences"
	KeyNLPStemming             = "nlp.stemming"
	KeyNLPLanguage             = "nlp.language"
	KeyTaggingRulesFile        = "tagging.rules_file"
	KeyTaggingMinConfidence    = "tagging.min_confidence"
	KeyTaggingKeywordTags      = "tagging.keyword_tags"
	KeyTaggingPropertyNames    = "tagging.property_names"
	KeyTaggingWatchRules       = "tagging.watch_rules"
	KeyLLMProvider             = "llm.provider"
	KeyLLMAPIKey               = "llm.api_key"
	KeyLLMModel                = "llm.model"
	KeyLLMBaseURL              = "llm.base_url"
)

// Defaults are returned for keys that are not set in the file.
// They are never written back.
var Defaults = map[string]any{
	KeyNotionMaxDepth:          int64(3),
	KeyNotionRequestsPerSecond: int64(3),
	KeyNLPMaxKeywords:          int64(10),
	KeyNLPSummarySentences:     int64(3),
	KeyNLPStemming:             true,
	KeyTaggingMinConfidence:    0.3,
	KeyTaggingKeywordTags:      int64(5),
	KeyTaggingPropertyNames:    []string{"Tags", "Category", "Status"},
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Keys use dot notation and are written as nested TOML tables.
type ConfigStore struct {
	typed.Getters

	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.notion-nlp/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".notion-nlp")
	}
	return NewConfigStoreAt(filepath.Join(configDir, "config.toml"))
}

// NewConfigStoreAt creates a config store backed by an explicit file path,
// as given with the --config flag.
func NewConfigStoreAt(path string) (*ConfigStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	s.Getters = typed.NewGetters(s.Get)

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key, falling back to Defaults.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	val, ok := s.data[key]
	s.mu.RUnlock()
	if ok {
		return val, true
	}

	val, ok = Defaults[key]
	return val, ok
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("set config: empty key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Keys returns the keys set in the file, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(nestMap(s.data))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load reads configuration from the TOML file. A missing file is empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse config %s: %w", s.filePath, err)
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// nestMap is the inverse of flattenMap. A key whose prefix is already a
// scalar is kept flat at the deepest table that exists.
func nestMap(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	// Shorter keys first so scalars claim their names before sub-keys.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	root := make(map[string]any)
	for _, key := range keys {
		parts := strings.Split(key, ".")
		table := root
		for i, part := range parts[:len(parts)-1] {
			next, exists := table[part]
			if !exists {
				child := make(map[string]any)
				table[part] = child
				table = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				parts = []string{strings.Join(parts[i:], ".")}
				break
			}
			table = child
		}
		table[parts[len(parts)-1]] = flat[key]
	}
	return root
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
