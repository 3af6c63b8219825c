package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.TokenProvider = (*CredentialsTokenProvider)(nil)

// Refresher renews OAuth tokens. Implemented by oauth.Client.
type Refresher interface {
	Refresh(ctx context.Context, stored *domain.OAuthToken) (*domain.OAuthToken, error)
}

// CredentialsTokenProvider serves the token stored in a Credentials
// record: an internal integration token, or an OAuth access token that
// is refreshed shortly before it expires when a Refresher is set.
type CredentialsTokenProvider struct {
	credentialsID string
	store         driven.CredentialsStore
	refresher     Refresher

	mu            sync.RWMutex
	cachedToken   string
	cacheExpiry   time.Time
	refreshBuffer time.Duration
	now           func() time.Time
}

// NewCredentialsTokenProvider creates a provider for stored credentials.
// refresher may be nil; expired OAuth tokens then fail with ErrAuthExpired.
func NewCredentialsTokenProvider(
	credentialsID string,
	store driven.CredentialsStore,
	refresher Refresher,
) *CredentialsTokenProvider {
	return &CredentialsTokenProvider{
		credentialsID: credentialsID,
		store:         store,
		refresher:     refresher,
		refreshBuffer: 5 * time.Minute,
		now:           time.Now,
	}
}

// GetToken returns a valid access token, refreshing if necessary.
func (p *CredentialsTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		token := p.cachedToken
		p.mu.RUnlock()
		return token, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if p.cachedToken != "" && p.now().Before(p.cacheExpiry) {
		return p.cachedToken, nil
	}

	creds, err := p.store.Get(ctx, p.credentialsID)
	if err != nil {
		return "", fmt.Errorf("get credentials: %w", err)
	}

	if creds.OAuth != nil && p.expiring(creds.OAuth) {
		if err := p.refresh(ctx, creds); err != nil {
			return "", err
		}
	}

	token := creds.AccessToken()
	if token == "" {
		return "", fmt.Errorf("credentials %s: %w", p.credentialsID, domain.ErrAuthRequired)
	}

	p.cachedToken = token
	if creds.OAuth != nil && !creds.OAuth.Expiry.IsZero() {
		p.cacheExpiry = creds.OAuth.Expiry.Add(-p.refreshBuffer)
	} else {
		p.cacheExpiry = p.now().Add(time.Hour)
	}
	return token, nil
}

func (p *CredentialsTokenProvider) expiring(tok *domain.OAuthToken) bool {
	if tok.Expiry.IsZero() {
		return false
	}
	return tok.Expiry.Sub(p.now()) < p.refreshBuffer
}

// refresh renews creds.OAuth in place and persists it. Caller holds mu.
func (p *CredentialsTokenProvider) refresh(ctx context.Context, creds *domain.Credentials) error {
	if p.refresher == nil || creds.OAuth.RefreshToken == "" {
		if creds.OAuth.IsExpired() {
			return fmt.Errorf("credentials %s: %w", p.credentialsID, domain.ErrAuthExpired)
		}
		// Still usable for a few minutes.
		return nil
	}

	fresh, err := p.refresher.Refresh(ctx, creds.OAuth)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = creds.OAuth.RefreshToken
	}
	creds.OAuth = fresh
	creds.UpdatedAt = p.now()

	if err := p.store.Save(ctx, *creds); err != nil {
		return fmt.Errorf("save refreshed credentials: %w", err)
	}
	return nil
}

// CredentialsID returns the credentials ID.
func (p *CredentialsTokenProvider) CredentialsID() string {
	return p.credentialsID
}

// AuthMethod reports token or OAuth depending on what is stored.
func (p *CredentialsTokenProvider) AuthMethod() domain.AuthMethod {
	creds, err := p.store.Get(context.Background(), p.credentialsID)
	if err != nil {
		return domain.AuthMethodNone
	}
	return creds.Method()
}

// IsAuthenticated returns true if the credentials hold a token.
func (p *CredentialsTokenProvider) IsAuthenticated() bool {
	p.mu.RLock()
	cached := p.cachedToken != "" && p.now().Before(p.cacheExpiry)
	p.mu.RUnlock()
	if cached {
		return true
	}

	creds, err := p.store.Get(context.Background(), p.credentialsID)
	if err != nil {
		return false
	}
	return creds.IsAuthenticated()
}

// InvalidateCache clears the cached token, e.g. after a 401.
func (p *CredentialsTokenProvider) InvalidateCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cachedToken = ""
	p.cacheExpiry = time.Time{}
}
