package auth

import (
	"fmt"

	file "github.com/voltfolio/evisync/internal/adapters/driven/config/file"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// Auth modes accepted in configuration.
const (
	ModeClientCredentials = "client_credentials"
	ModeToken             = "token"
	ModePrompt            = "prompt"
)

// NewProviderFromConfig creates the TokenProvider the configuration asks
// for. An empty mode picks client credentials when a secret is configured,
// a static token when one is present, and the interactive prompt otherwise.
func NewProviderFromConfig(cfg driven.ConfigStore) (driven.TokenProvider, error) {
	mode := cfg.GetString(file.KeyAuthMode)
	if mode == "" {
		switch {
		case cfg.GetString(file.KeyAuthClientSecret) != "":
			mode = ModeClientCredentials
		case cfg.GetString(file.KeyAuthToken) != "":
			mode = ModeToken
		default:
			mode = ModePrompt
		}
	}

	switch mode {
	case ModeClientCredentials:
		tenant := cfg.GetString(file.KeyAuthTenantID)
		clientID := cfg.GetString(file.KeyAuthClientID)
		secret := cfg.GetString(file.KeyAuthClientSecret)
		if tenant == "" || clientID == "" || secret == "" {
			return nil, fmt.Errorf("client_credentials auth requires %s, %s and %s",
				file.KeyAuthTenantID, file.KeyAuthClientID, file.KeyAuthClientSecret)
		}
		return NewClientCredentialsProvider(tenant, clientID, secret, cfg.GetString(file.KeyAuthScope)), nil
	case ModeToken:
		return NewStaticProvider(cfg.GetString(file.KeyAuthToken)), nil
	case ModePrompt:
		return NewPromptProvider(), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}
}
