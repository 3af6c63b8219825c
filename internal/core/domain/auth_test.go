package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOAuthToken_IsExpired(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"no expiry", time.Time{}, false},
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := &OAuthToken{AccessToken: "x", Expiry: tt.expiry}
			assert.Equal(t, tt.want, tok.IsExpired())
		})
	}
}

func TestCredentials_AccessToken(t *testing.T) {
	tests := []struct {
		name       string
		creds      Credentials
		wantToken  string
		wantMethod AuthMethod
		wantAuth   bool
	}{
		{"integration token", Credentials{Token: "secret_abc"}, "secret_abc", AuthMethodToken, true},
		{"oauth wins", Credentials{Token: "secret_abc", OAuth: &OAuthToken{AccessToken: "oauth"}}, "oauth", AuthMethodOAuth, true},
		{"empty oauth falls back", Credentials{Token: "secret_abc", OAuth: &OAuthToken{}}, "secret_abc", AuthMethodOAuth, true},
		{"nothing", Credentials{}, "", AuthMethodNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantToken, tt.creds.AccessToken())
			assert.Equal(t, tt.wantMethod, tt.creds.Method())
			assert.Equal(t, tt.wantAuth, tt.creds.IsAuthenticated())
		})
	}
}
