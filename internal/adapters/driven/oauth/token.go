// Package oauth implements the Notion public integration OAuth flow.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.OAuthClient = (*Client)(nil)

// Notion OAuth endpoints.
const (
	AuthURL  = "https://api.notion.com/v1/oauth/authorize"
	TokenURL = "https://api.notion.com/v1/oauth/token"
)

// ErrNotConfigured is returned when no client ID or secret is set.
var ErrNotConfigured = errors.New("notion oauth client not configured")

// Config holds the public integration credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// AuthURL and TokenURL override the Notion endpoints in tests.
	AuthURL  string
	TokenURL string

	// HTTPClient is used for token requests. Defaults to a 30s client.
	HTTPClient *http.Client
}

// Client runs the authorisation code exchange and token refresh.
type Client struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

// NewClient creates an OAuth client. Returns ErrNotConfigured when the
// client ID or secret is empty.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrNotConfigured
	}
	authURL, tokenURL := cfg.AuthURL, cfg.TokenURL
	if authURL == "" {
		authURL = AuthURL
	}
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Notion requires HTTP Basic client authentication.
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}, nil
}

// AuthCodeURL returns the URL the user opens to grant access.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("owner", "user"))
}

// Exchange trades an authorisation code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*domain.OAuthGrant, error) {
	if code == "" {
		return nil, fmt.Errorf("exchange code: %w", domain.ErrInvalidInput)
	}

	tok, err := c.cfg.Exchange(c.context(ctx), code)
	if err != nil {
		return nil, wrapTokenError("exchange code", err)
	}

	result := &domain.OAuthGrant{Token: fromOAuth2(tok)}
	if ws, ok := tok.Extra("workspace_name").(string); ok {
		result.Workspace = ws
	}
	if bot, ok := tok.Extra("bot_id").(string); ok {
		result.BotID = bot
	}
	return result, nil
}

// Refresh returns a fresh token for stored credentials. A token that is
// still valid is returned unchanged.
func (c *Client) Refresh(ctx context.Context, stored *domain.OAuthToken) (*domain.OAuthToken, error) {
	if stored == nil || stored.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token: %w", domain.ErrAuthExpired)
	}

	src := c.cfg.TokenSource(c.context(ctx), toOAuth2(stored))
	tok, err := src.Token()
	if err != nil {
		return nil, wrapTokenError("refresh token", err)
	}
	return fromOAuth2(tok), nil
}

func (c *Client) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// wrapTokenError maps rejected grants to an AuthenticationError.
func wrapTokenError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		status := re.Response.StatusCode
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return domain.NewAuthenticationError(op, status, err)
		}
	}
	return domain.NewError(op, "token request failed", err)
}

func toOAuth2(t *domain.OAuthToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func fromOAuth2(t *oauth2.Token) *domain.OAuthToken {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &domain.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    tokenType,
		Expiry:       t.Expiry,
	}
}
