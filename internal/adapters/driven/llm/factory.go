// Package llm selects and validates the configured language model adapter.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// Supported providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Ollama exposes an OpenAI-compatible API under /v1.
const (
	ollamaBaseURL = "http://localhost:11434/v1"
	ollamaModel   = "llama3.2"
)

// pingTimeout bounds connectivity validation.
const pingTimeout = 5 * time.Second

// Settings are the llm.* configuration values.
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// SettingsFrom reads the llm.* keys from a config store.
func SettingsFrom(cfg driven.ConfigStore) Settings {
	return Settings{
		Provider: cfg.GetString("llm.provider"),
		APIKey:   cfg.GetString("llm.api_key"),
		Model:    cfg.GetString("llm.model"),
		BaseURL:  cfg.GetString("llm.base_url"),
	}
}

// IsConfigured reports whether a provider is selected.
func (s Settings) IsConfigured() bool {
	p := strings.ToLower(strings.TrimSpace(s.Provider))
	return p != "" && p != ProviderNone
}

// New creates the LLM service for settings. It returns nil, nil when no
// provider is configured.
func New(settings Settings, prompts driven.PromptStore) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch strings.ToLower(strings.TrimSpace(settings.Provider)) {
	case ProviderOpenAI:
		return openai.NewLLMService(openai.Config{
			APIKey:     settings.APIKey,
			RequireKey: settings.BaseURL == "",
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Prompts:    prompts,
		})
	case ProviderOllama:
		cfg := openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Prompts: prompts,
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = ollamaBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = ollamaModel
		}
		return openai.NewLLMService(cfg)
	default:
		return nil, fmt.Errorf("%w: llm provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// NewValidated creates the service and pings it. Failures wrap
// domain.ErrLLMUnavailable so callers can degrade to extractive summaries.
func NewValidated(ctx context.Context, settings Settings, prompts driven.PromptStore) (driven.LLMService, error) {
	svc, err := New(settings, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, settings.Provider, err)
	}
	return svc, nil
}
