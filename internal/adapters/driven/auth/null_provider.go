package auth

import (
	"context"
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is used for sources with no stored token and no
// environment token. Every request fails with ErrAuthRequired so the
// user is pointed at `auth set-token`.
type NullTokenProvider struct {
	sourceID string
}

// NewNullTokenProvider creates a provider that has no token for sourceID.
func NewNullTokenProvider(sourceID string) *NullTokenProvider {
	return &NullTokenProvider{sourceID: sourceID}
}

// GetToken always fails.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	if p.sourceID == "" {
		return "", domain.ErrAuthRequired
	}
	return "", fmt.Errorf("source %s: %w", p.sourceID, domain.ErrAuthRequired)
}

// CredentialsID returns an empty string.
func (p *NullTokenProvider) CredentialsID() string {
	return ""
}

// AuthMethod returns AuthMethodNone.
func (p *NullTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodNone
}

// IsAuthenticated returns false.
func (p *NullTokenProvider) IsAuthenticated() bool {
	return false
}
