package auth

import (
	"context"
	"fmt"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// Ensure StaticProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*StaticProvider)(nil)

// StaticProvider serves a pre-issued bearer token. Useful for app-only
// tokens minted out of band and for tests.
type StaticProvider struct {
	token string
}

// NewStaticProvider creates a token provider around a fixed token.
func NewStaticProvider(token string) *StaticProvider {
	return &StaticProvider{token: token}
}

// GetToken returns the configured token.
func (p *StaticProvider) GetToken(_ context.Context) (string, error) {
	if p.token == "" {
		return "", fmt.Errorf("no token configured: %w", domain.ErrAuthRequired)
	}
	return p.token, nil
}
