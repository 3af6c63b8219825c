package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService stores integration tokens and OAuth grants for sources.
type AuthService struct {
	sourceStore      driven.SourceStore
	credentialsStore driven.CredentialsStore
	oauth            driven.OAuthClient
	factory          driven.ConnectorFactory
	tokenEnv         string
	lookupEnv        func(string) (string, bool)
	now              func() time.Time
}

// NewAuthService creates an auth service. oauth may be nil when no public
// integration is configured. With a factory, stored tokens are verified by
// asking the API for the workspace name.
func NewAuthService(
	sourceStore driven.SourceStore,
	credentialsStore driven.CredentialsStore,
	oauth driven.OAuthClient,
	factory driven.ConnectorFactory,
	tokenEnv string,
) *AuthService {
	return &AuthService{
		sourceStore:      sourceStore,
		credentialsStore: credentialsStore,
		oauth:            oauth,
		factory:          factory,
		tokenEnv:         tokenEnv,
		lookupEnv:        os.LookupEnv,
		now:              time.Now,
	}
}

// SetToken stores an internal integration token for a source.
func (s *AuthService) SetToken(ctx context.Context, sourceID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidInput)
	}
	return s.store(ctx, sourceID, func(c *domain.Credentials) {
		c.Token = token
		c.OAuth = nil
		c.Workspace = ""
	})
}

// OAuthURL returns the authorisation URL of the public integration.
func (s *AuthService) OAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", fmt.Errorf("%w: oauth client is not configured", domain.ErrNotImplemented)
	}
	if state == "" {
		state = uuid.NewString()
	}
	return s.oauth.AuthCodeURL(state), nil
}

// ExchangeCode completes the OAuth flow and stores the grant for a source.
func (s *AuthService) ExchangeCode(ctx context.Context, sourceID, code string) error {
	if s.oauth == nil {
		return fmt.Errorf("%w: oauth client is not configured", domain.ErrNotImplemented)
	}
	if _, err := s.sourceStore.Get(ctx, sourceID); err != nil {
		return err
	}
	grant, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return err
	}
	return s.store(ctx, sourceID, func(c *domain.Credentials) {
		c.OAuth = grant.Token
		c.Token = ""
		c.Workspace = grant.Workspace
	})
}

// Status reports how a source authenticates and the workspace name when
// known.
func (s *AuthService) Status(ctx context.Context, sourceID string) (domain.AuthMethod, string, error) {
	if _, err := s.sourceStore.Get(ctx, sourceID); err != nil {
		return domain.AuthMethodNone, "", err
	}
	creds, err := s.credentialsStore.GetBySourceID(ctx, sourceID)
	if err != nil {
		return domain.AuthMethodNone, "", err
	}
	if creds != nil && creds.IsAuthenticated() {
		return creds.Method(), creds.Workspace, nil
	}
	if s.tokenEnv != "" {
		if v, ok := s.lookupEnv(s.tokenEnv); ok && strings.TrimSpace(v) != "" {
			return domain.AuthMethodEnv, "", nil
		}
	}
	return domain.AuthMethodNone, "", nil
}

// store applies set to the source's credentials, creating them when
// needed, links them to the source and verifies them. Verification
// failures restore the previous credentials.
func (s *AuthService) store(ctx context.Context, sourceID string, set func(*domain.Credentials)) error {
	source, err := s.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return err
	}
	existing, err := s.credentialsStore.GetBySourceID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	original := *source
	now := s.now()
	creds := domain.Credentials{ID: uuid.NewString(), SourceID: sourceID, CreatedAt: now}
	if existing != nil {
		creds = *existing
	}
	set(&creds)
	creds.UpdatedAt = now

	if err := s.credentialsStore.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if source.CredentialsID != creds.ID {
		source.CredentialsID = creds.ID
		source.UpdatedAt = now
		if err := s.sourceStore.Save(ctx, *source); err != nil {
			return fmt.Errorf("link credentials: %w", err)
		}
	}

	workspace, err := s.verify(ctx, *source)
	if err != nil {
		s.restore(ctx, existing, creds.ID, original)
		return err
	}
	if workspace != "" && workspace != creds.Workspace {
		creds.Workspace = workspace
		if err := s.credentialsStore.Save(ctx, creds); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
	}
	logger.Info("Stored %s credentials for %s", creds.Method(), source.Name)
	return nil
}

func (s *AuthService) verify(ctx context.Context, source domain.Source) (string, error) {
	if s.factory == nil {
		return "", nil
	}
	conn, err := s.factory.Create(ctx, source)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.Workspace(ctx)
}

func (s *AuthService) restore(ctx context.Context, previous *domain.Credentials, id string, source domain.Source) {
	if err := s.sourceStore.Save(ctx, source); err != nil {
		logger.Warn("restore source: %v", err)
	}
	var err error
	if previous != nil {
		err = s.credentialsStore.Save(ctx, *previous)
	} else {
		err = s.credentialsStore.Delete(ctx, id)
	}
	if err != nil {
		logger.Warn("restore credentials: %v", err)
	}
}
