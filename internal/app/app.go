// Package app wires the stores, adapters and services behind the CLI and
// the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/auth"
	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/llm"
	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/oauth"
	"github.com/custodia-labs/notion-nlp/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/notion-nlp/internal/connectors"
	"github.com/custodia-labs/notion-nlp/internal/connectors/notion"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/services"
	"github.com/custodia-labs/notion-nlp/internal/logger"
	"github.com/custodia-labs/notion-nlp/internal/nlp"
	"github.com/custodia-labs/notion-nlp/internal/normalisers"
	"github.com/custodia-labs/notion-nlp/internal/postprocessors"
	"github.com/custodia-labs/notion-nlp/internal/tagging"
)

// Options are the global command line settings.
type Options struct {
	// ConfigPath is the TOML config file. Empty uses ~/.notion-nlp/config.toml.
	ConfigPath string
	// DataDir holds the SQLite database. Empty uses ~/.notion-nlp/data.
	DataDir string
	// TokenEnv names the environment variable with a fallback token.
	TokenEnv string
}

// App holds every wired component.
type App struct {
	Config  *file.ConfigStore
	Prompts *file.PromptStore
	Store   *sqlite.Store

	Text   *nlp.Processor
	Tagger *tagging.Tagger
	LLM    driven.LLMService

	Connectors *services.ConnectorRegistry
	Sources    *services.SourceService
	Documents  *services.DocumentService
	Sync       *services.SyncOrchestrator
	Auth       *services.AuthService
	Analysis   *services.AnalysisService

	cancel context.CancelFunc
}

// New opens the stores and builds the services. The context bounds
// background work such as watching the tag rules file.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := openConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	prompts, err := file.NewPromptStore(filepath.Join(filepath.Dir(cfg.Path()), "prompts"))
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &App{Config: cfg, Prompts: prompts, Store: store, cancel: cancel}

	a.LLM, err = llm.New(llm.SettingsFrom(cfg), prompts)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
		a.LLM = nil
	}

	a.Text = nlp.New(textOptions(cfg, a.LLM)...)
	a.Tagger = tagging.New(tagOptions(cfg, a.Text, a.LLM, prompts)...)
	if err := a.loadRules(ctx); err != nil {
		a.Close()
		return nil, err
	}

	pipeline, err := buildPipeline(a.Text, a.Tagger)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokenEnv := opts.TokenEnv
	if tokenEnv == "" {
		tokenEnv = auth.DefaultTokenEnv
	}
	oauthClient, err := newOAuthClient(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	tokenOpts := []auth.FactoryOption{auth.WithTokenEnv(tokenEnv)}
	var oauthPort driven.OAuthClient
	if oauthClient != nil {
		tokenOpts = append(tokenOpts, auth.WithRefresher(oauthClient))
		oauthPort = oauthClient
	}
	tokens := auth.NewFactory(store.CredentialsStore(), tokenOpts...)

	var clientOpts []notion.ClientOption
	if rps := cfg.GetFloat(file.KeyNotionRequestsPerSecond); rps > 0 {
		clientOpts = append(clientOpts, notion.WithRateLimit(rps))
	}
	factory := connectors.NewDefaultFactory(tokens, clientOpts...)
	normaliserRegistry := normalisers.NewDefaultRegistry()

	a.Connectors = services.NewConnectorRegistry()
	a.Sources = services.NewSourceService(
		store.SourceStore(), store.SyncStateStore(), store.DocumentStore(),
		store.CredentialsStore(), a.Connectors,
	)
	a.Documents = services.NewDocumentService(
		store.DocumentStore(), store.SourceStore(), a.Connectors, a.Text, a.Tagger,
	)
	a.Sync = services.NewSyncOrchestrator(
		store.SourceStore(), store.SyncStateStore(), store.DocumentStore(),
		factory, normaliserRegistry, pipeline,
	)
	a.Auth = services.NewAuthService(
		store.SourceStore(), store.CredentialsStore(), oauthPort, factory, tokenEnv,
	)
	a.Analysis = services.NewAnalysisService(normaliserRegistry, a.Text, a.Tagger)

	return a, nil
}

// Close stops background work and closes the stores.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

func openConfig(path string) (*file.ConfigStore, error) {
	var (
		cfg *file.ConfigStore
		err error
	)
	if path != "" {
		cfg, err = file.NewConfigStoreAt(path)
	} else {
		cfg, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func textOptions(cfg driven.ConfigStore, model driven.LLMService) []nlp.Option {
	opts := []nlp.Option{
		nlp.WithMaxKeywords(cfg.GetInt(file.KeyNLPMaxKeywords)),
		nlp.WithSummarySentences(cfg.GetInt(file.KeyNLPSummarySentences)),
		nlp.WithStemming(cfg.GetBool(file.KeyNLPStemming)),
	}
	if lang := cfg.GetString(file.KeyNLPLanguage); lang != "" {
		opts = append(opts, nlp.WithLanguage(lang))
	}
	if model != nil {
		opts = append(opts, nlp.WithLLM(model))
	}
	return opts
}

func tagOptions(cfg driven.ConfigStore, text *nlp.Processor, model driven.LLMService, prompts driven.PromptStore) []tagging.Option {
	opts := []tagging.Option{
		tagging.WithTextAnalyzer(text),
		tagging.WithMinConfidence(cfg.GetFloat(file.KeyTaggingMinConfidence)),
		tagging.WithKeywordTags(cfg.GetInt(file.KeyTaggingKeywordTags)),
	}
	if names := cfg.GetStringSlice(file.KeyTaggingPropertyNames); len(names) > 0 {
		opts = append(opts, tagging.WithPropertyNames(names...))
	}
	if model != nil {
		opts = append(opts, tagging.WithLLM(model, prompts))
	}
	return opts
}

// loadRules applies the configured rules file, watching it for changes
// when tagging.watch_rules is set.
func (a *App) loadRules(ctx context.Context) error {
	path := a.Config.GetString(file.KeyTaggingRulesFile)
	if path == "" {
		return nil
	}
	if a.Config.GetBool(file.KeyTaggingWatchRules) {
		return a.Tagger.WatchRules(ctx, path)
	}
	rules, err := tagging.LoadRules(path)
	if err != nil {
		return fmt.Errorf("tag rules: %w", err)
	}
	return a.Tagger.SetRules(rules)
}

func buildPipeline(text *nlp.Processor, tagger *tagging.Tagger) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, postprocessors.Dependencies{
		TextProcessor: text,
		Tagger:        tagger,
	})
	pipeline, err := postprocessors.BuildPipeline(registry, postprocessors.DefaultOrder, nil)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return pipeline, nil
}

// newOAuthClient returns nil when no public integration is configured.
func newOAuthClient(cfg driven.ConfigStore) (*oauth.Client, error) {
	client, err := oauth.NewClient(oauth.Config{
		ClientID:     cfg.GetString(file.KeyNotionOAuthClientID),
		ClientSecret: cfg.GetString(file.KeyNotionOAuthSecret),
		RedirectURL:  cfg.GetString(file.KeyNotionOAuthRedirectURL),
	})
	if errors.Is(err, oauth.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	return client, nil
}
