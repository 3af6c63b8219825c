package auth

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// DefaultTokenEnv is the environment variable holding an integration token.
const DefaultTokenEnv = "NOTION_TOKEN"

var _ driven.TokenProvider = (*EnvTokenProvider)(nil)

// EnvTokenProvider reads the token from an environment variable on every
// call, so a changed variable is picked up by long-running servers.
type EnvTokenProvider struct {
	name   string
	lookup func(string) (string, bool)
}

// NewEnvTokenProvider creates a provider for the named variable.
// An empty name uses DefaultTokenEnv.
func NewEnvTokenProvider(name string) *EnvTokenProvider {
	if name == "" {
		name = DefaultTokenEnv
	}
	return &EnvTokenProvider{name: name, lookup: os.LookupEnv}
}

// GetToken returns the trimmed variable value.
func (p *EnvTokenProvider) GetToken(_ context.Context) (string, error) {
	token := p.token()
	if token == "" {
		return "", domain.ErrAuthRequired
	}
	return token, nil
}

func (p *EnvTokenProvider) token() string {
	v, _ := p.lookup(p.name)
	return strings.TrimSpace(v)
}

// CredentialsID returns an empty string; nothing is stored.
func (p *EnvTokenProvider) CredentialsID() string {
	return ""
}

// AuthMethod returns AuthMethodEnv.
func (p *EnvTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodEnv
}

// IsAuthenticated reports whether the variable is set and non-blank.
func (p *EnvTokenProvider) IsAuthenticated() bool {
	return p.token() != ""
}
