package domain

import "time"

// Credentials stores authentication for a Source.
// A Notion source authenticates either with an internal integration token
// or with tokens obtained through a public integration OAuth flow.
type Credentials struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// SourceID links to the Source these credentials belong to.
	SourceID string `json:"source_id"`

	// Workspace is the Notion workspace name reported by the API.
	Workspace string `json:"workspace,omitempty"`

	// OAuth holds OAuth tokens. Nil for integration tokens.
	OAuth *OAuthToken `json:"oauth,omitempty"`

	// Token is the internal integration secret. Empty for OAuth.
	Token string `json:"token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAuthenticated returns true if the credentials contain a usable token.
func (c *Credentials) IsAuthenticated() bool {
	return c.AccessToken() != ""
}

// AccessToken returns the bearer token, OAuth first.
func (c *Credentials) AccessToken() string {
	if c.OAuth != nil && c.OAuth.AccessToken != "" {
		return c.OAuth.AccessToken
	}
	return c.Token
}

// Method returns how these credentials authenticate.
func (c *Credentials) Method() AuthMethod {
	switch {
	case c.OAuth != nil:
		return AuthMethodOAuth
	case c.Token != "":
		return AuthMethodToken
	default:
		return AuthMethodNone
	}
}
