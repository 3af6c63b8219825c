package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
// Implementations refresh tokens transparently where the provider allows it.
type TokenProvider interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)

	// CredentialsID returns the credentials in use, empty if none are stored.
	CredentialsID() string

	// AuthMethod returns the authentication method.
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
