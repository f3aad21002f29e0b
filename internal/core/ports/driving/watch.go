package driving

import "context"

// WatchService mirrors a local evidence inbox into the remote store until
// its context is cancelled.
type WatchService interface {
	// Run scans the inbox once, then blocks watching for changes. It
	// returns the context's error on cancellation.
	Run(ctx context.Context) error
}
