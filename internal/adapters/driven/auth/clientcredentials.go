package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// Ensure ClientCredentialsProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*ClientCredentialsProvider)(nil)

// defaultScope requests an app-only token for the document store API.
const defaultScope = "https://graph.microsoft.com/.default"

// ClientCredentialsProvider acquires app-only tokens via the OAuth2 client
// credentials grant against the tenant's token endpoint. Tokens are cached
// and refreshed by the underlying token source.
type ClientCredentialsProvider struct {
	mu     sync.Mutex
	cfg    clientcredentials.Config
	source oauth2.TokenSource
}

// NewClientCredentialsProvider creates a provider for a tenant and app
// registration. Scope defaults to the document store's .default scope.
func NewClientCredentialsProvider(tenantID, clientID, clientSecret, scope string) *ClientCredentialsProvider {
	if scope == "" {
		scope = defaultScope
	}
	return &ClientCredentialsProvider{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
			Scopes:       []string{scope},
		},
	}
}

// GetToken returns a valid access token, fetching or refreshing as needed.
func (p *ClientCredentialsProvider) GetToken(ctx context.Context) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return "", fmt.Errorf("client credentials not configured: %w", domain.ErrAuthRequired)
	}

	p.mu.Lock()
	if p.source == nil {
		// The token source carries its own context for refreshes; pin it to
		// Background so a cancelled request doesn't poison the cache.
		p.source = p.cfg.TokenSource(context.Background())
	}
	source := p.source
	p.mu.Unlock()

	// Honor the caller's deadline for this fetch.
	type result struct {
		token *oauth2.Token
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		tok, err := source.Token()
		ch <- result{tok, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("acquire token: %w", res.err)
		}
		return res.token.AccessToken, nil
	}
}
