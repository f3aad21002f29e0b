package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// Ensure PromptProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*PromptProvider)(nil)

// promptMu serializes interactive prompts across all providers. Concurrent
// uploads must not interleave reads on the one terminal.
var promptMu sync.Mutex

// PromptProvider asks the operator for a bearer token on the terminal the
// first time one is needed, then caches it for the rest of the process.
type PromptProvider struct {
	mu    sync.Mutex
	token string

	// readToken is swapped in tests; defaults to a hidden terminal read.
	readToken func() (string, error)
}

// NewPromptProvider creates an interactive token provider.
func NewPromptProvider() *PromptProvider {
	return &PromptProvider{readToken: readTokenFromTerminal}
}

// GetToken returns the cached token, prompting on first use.
func (p *PromptProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" {
		return p.token, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	promptMu.Lock()
	token, err := p.readToken()
	promptMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("empty token entered")
	}

	p.token = token
	return p.token, nil
}

func readTokenFromTerminal() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Access token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
