package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

func TestSettingsFrom(t *testing.T) {
	cfg := memory.NewConfigStore(map[string]any{
		"llm.provider": "ollama",
		"llm.model":    "qwen",
	})

	s := SettingsFrom(cfg)

	assert.Equal(t, Settings{Provider: "ollama", Model: "qwen"}, s)
	assert.True(t, s.IsConfigured())
	assert.False(t, Settings{Provider: "none"}.IsConfigured())
	assert.False(t, Settings{}.IsConfigured())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantNil  bool
		wantErr  error
		model    string
	}{
		{name: "not configured", settings: Settings{}, wantNil: true},
		{name: "openai", settings: Settings{Provider: "openai", APIKey: "k"}, model: "gpt-4o-mini"},
		{name: "openai without key", settings: Settings{Provider: "OpenAI"}, wantErr: domain.ErrInvalidInput},
		{name: "openai compatible server", settings: Settings{Provider: "openai", BaseURL: "http://local/v1", Model: "m"}, model: "m"},
		{name: "ollama defaults", settings: Settings{Provider: "ollama"}, model: "llama3.2"},
		{name: "unknown", settings: Settings{Provider: "bard"}, wantErr: domain.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(tt.settings, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}

func TestNewValidated(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer ok.Close()

	svc, err := NewValidated(context.Background(), Settings{Provider: "ollama", BaseURL: ok.URL + "/v1"}, nil)
	require.NoError(t, err)
	require.NotNil(t, svc)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	_, err = NewValidated(context.Background(), Settings{Provider: "ollama", BaseURL: down.URL}, nil)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	svc, err = NewValidated(context.Background(), Settings{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)
}
