package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults
var defaultFiles embed.FS

// defaultPrompts maps a prompt name to its embedded template.
var defaultPrompts = loadDefaults()

func loadDefaults() map[string]string {
	entries, err := fs.ReadDir(defaultFiles, "defaults")
	if err != nil {
		panic(err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".txt")
		if !ok {
			continue
		}
		data, err := defaultFiles.ReadFile("defaults/" + e.Name())
		if err != nil {
			panic(err)
		}
		out[name] = strings.TrimSpace(string(data))
	}
	return out
}

// PromptStore serves LLM prompt templates from <dir>/<name>.txt, which
// users may edit. The directory is seeded with the embedded defaults on
// first Load, never overwriting existing files.
type PromptStore struct {
	dir string

	initOnce sync.Once
	initErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore does no I/O. An empty dir means ~/.notion-nlp/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".notion-nlp", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the template called name. Known prompts fall back to the
// embedded default when the file is missing, unreadable or has lost one
// of the default's placeholders.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	def, known := defaultPrompts[name]
	if s.initErr != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = def
	case known && placeholders(prompt) != placeholders(def):
		logger.Warn("Prompt %s.txt must keep the placeholders %s, using the default", name, placeholders(def))
		prompt = def
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached templates so edited files are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	entries, err := fs.ReadDir(defaultFiles, "defaults")
	if err != nil {
		s.initErr = err
		return
	}
	for _, e := range entries {
		path := filepath.Join(s.dir, e.Name())
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		data, err := defaultFiles.ReadFile("defaults/" + e.Name())
		if err == nil {
			err = os.WriteFile(path, data, 0o600)
		}
		if err != nil {
			s.initErr = fmt.Errorf("write default %s: %w", e.Name(), err)
			return
		}
	}
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// placeholders returns the fmt verbs of a template in order, e.g. "%d%s".
func placeholders(tmpl string) string {
	var b strings.Builder
	for i := 0; i < len(tmpl)-1; i++ {
		if tmpl[i] != '%' {
			continue
		}
		switch tmpl[i+1] {
		case '%':
			i++
		case 'd', 's':
			b.WriteByte('%')
			b.WriteByte(tmpl[i+1])
			i++
		}
	}
	return b.String()
}
