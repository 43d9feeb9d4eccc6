package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials selects how the platform client authenticates. A static Token takes
// precedence over the client-credentials flow.
type Credentials struct {
	Token        string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// DefaultScopes derives the conventional scope from the platform base URL.
func DefaultScopes(baseURL string) []string {
	return []string{strings.TrimRight(baseURL, "/") + "/.default"}
}

// NewTokenSource returns a caching token source for the given credentials.
func NewTokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token, TokenType: "Bearer"}), nil
	}

	var missing []string
	if creds.TokenURL == "" {
		missing = append(missing, "token-url")
	}
	if creds.ClientID == "" {
		missing = append(missing, "client-id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client-secret")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
		Scopes:       creds.Scopes,
	}
	return oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx)), nil
}
