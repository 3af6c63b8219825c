package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.TokenProviderFactory = (*Factory)(nil)

// Factory resolves the TokenProvider for a source. Stored credentials
// win over the environment; with neither, a NullTokenProvider is returned.
type Factory struct {
	credentialsStore driven.CredentialsStore
	refresher        Refresher
	envVar           string
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithRefresher enables OAuth token refresh.
func WithRefresher(r Refresher) FactoryOption {
	return func(f *Factory) { f.refresher = r }
}

// WithTokenEnv sets the environment variable used as a fallback.
func WithTokenEnv(name string) FactoryOption {
	return func(f *Factory) { f.envVar = name }
}

// NewFactory creates a token provider factory.
func NewFactory(credentialsStore driven.CredentialsStore, opts ...FactoryOption) *Factory {
	f := &Factory{
		credentialsStore: credentialsStore,
		envVar:           DefaultTokenEnv,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateTokenProvider creates the appropriate TokenProvider for a source.
func (f *Factory) CreateTokenProvider(ctx context.Context, source *domain.Source) (driven.TokenProvider, error) {
	if source == nil {
		return nil, domain.ErrInvalidInput
	}

	creds, err := f.lookup(ctx, source)
	if err != nil {
		return nil, err
	}
	if creds != nil && creds.IsAuthenticated() {
		return NewCredentialsTokenProvider(creds.ID, f.credentialsStore, f.refresher), nil
	}

	if env := NewEnvTokenProvider(f.envVar); env.IsAuthenticated() {
		return env, nil
	}

	return NewNullTokenProvider(source.ID), nil
}

// lookup finds credentials by the source's CredentialsID, then by source ID.
func (f *Factory) lookup(ctx context.Context, source *domain.Source) (*domain.Credentials, error) {
	if f.credentialsStore == nil {
		return nil, nil
	}
	if source.CredentialsID != "" {
		creds, err := f.credentialsStore.Get(ctx, source.CredentialsID)
		if err != nil {
			return nil, fmt.Errorf("get credentials %s: %w", source.CredentialsID, err)
		}
		return creds, nil
	}
	creds, err := f.credentialsStore.GetBySourceID(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("get credentials for source %s: %w", source.ID, err)
	}
	return creds, nil
}
