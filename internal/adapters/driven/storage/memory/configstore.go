package memory

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/config/typed"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds settings in memory. The CLI uses it with --no-config
// and tests use it to seed settings. Save and Load do nothing.
type ConfigStore struct {
	typed.Getters

	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns a store seeded with values, later maps winning.
func NewConfigStore(values ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	s.Getters = typed.NewGetters(s.Get)
	for _, m := range values {
		for k, v := range m {
			s.values[k] = v
		}
	}
	return s
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("set config: empty key")
	}
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Save() error { return nil }

func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
