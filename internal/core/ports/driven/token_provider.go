package driven

import "context"

// TokenProvider yields bearer tokens for authenticated calls against the
// remote document store. Implementations handle refresh transparently and,
// when a provider prompts interactively, must serialize concurrent prompts
// themselves so at most one prompt is in flight at a time.
type TokenProvider interface {
	// GetToken returns a valid bearer token. It may block, for example while
	// an interactive provider waits for user input.
	GetToken(ctx context.Context) (string, error)
}
