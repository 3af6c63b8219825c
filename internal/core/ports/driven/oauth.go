package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// OAuthClient runs the authorisation code flow of a public integration.
type OAuthClient interface {
	// AuthCodeURL returns the URL the user opens to grant access.
	AuthCodeURL(state string) string

	// Exchange trades an authorisation code for tokens.
	Exchange(ctx context.Context, code string) (*domain.OAuthGrant, error)
}
