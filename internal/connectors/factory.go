package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/connectors/notion"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory builds connectors for sources. Token providers are resolved per
// source through the TokenProviderFactory.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]driven.ConnectorBuilder
	tokens   driven.TokenProviderFactory
}

// NewFactory creates an empty factory.
func NewFactory(tokens driven.TokenProviderFactory) *Factory {
	return &Factory{
		builders: make(map[string]driven.ConnectorBuilder),
		tokens:   tokens,
	}
}

// NewDefaultFactory creates a factory with the Notion connector registered.
// Client options apply to every Notion connector it builds.
func NewDefaultFactory(tokens driven.TokenProviderFactory, opts ...notion.ClientOption) *Factory {
	f := NewFactory(tokens)
	f.Register(notion.ConnectorType, NotionBuilder(opts...))
	return f
}

// NotionBuilder returns a builder that parses the source config and creates
// a Notion connector.
func NotionBuilder(opts ...notion.ClientOption) driven.ConnectorBuilder {
	return func(source domain.Source, tokenProvider driven.TokenProvider) (driven.Connector, error) {
		cfg, err := notion.ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return notion.New(source.ID, cfg, tokenProvider, opts...), nil
	}
}

// Register adds a connector builder for the given type.
func (f *Factory) Register(connectorType string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[connectorType] = builder
}

// SupportedTypes returns all registered connector types, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create returns a connector for the source.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	f.mu.RLock()
	builder, ok := f.builders[source.Type]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("connector %q: %w", source.Type, domain.ErrUnsupportedType)
	}

	var provider driven.TokenProvider
	if f.tokens != nil {
		p, err := f.tokens.CreateTokenProvider(ctx, &source)
		if err != nil {
			return nil, fmt.Errorf("token provider for %s: %w", source.ID, err)
		}
		provider = p
	}

	conn, err := builder(source, provider)
	if err != nil {
		return nil, fmt.Errorf("build %s connector: %w", source.Type, err)
	}
	return conn, nil
}
