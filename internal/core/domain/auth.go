package domain

import "time"

// AuthMethod defines how a connector authenticates.
type AuthMethod string

const (
	// AuthMethodNone means no credential is available.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodToken uses an internal integration token.
	AuthMethodToken AuthMethod = "token"
	// AuthMethodOAuth uses a public integration OAuth token.
	AuthMethodOAuth AuthMethod = "oauth"
	// AuthMethodEnv reads the token from the environment.
	AuthMethodEnv AuthMethod = "env"
)

// OAuthToken represents stored OAuth credentials.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires. Notion tokens usually have none.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// OAuthGrant is the result of a completed authorisation code exchange.
type OAuthGrant struct {
	Token *OAuthToken

	// Workspace is the workspace name reported by the provider.
	Workspace string

	// BotID identifies the integration inside the workspace.
	BotID string
}
