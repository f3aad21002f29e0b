package driven

import (
	"context"
	"time"
)

// JournalEntry records one completed upload from the local watch directory.
// Size and ModTime identify the uploaded content version; a local file whose
// size or mtime differs from its entry is uploaded again.
type JournalEntry struct {
	ID         string
	LocalPath  string
	Size       int64
	ModTime    time.Time
	RemoteID   string
	WebURL     string
	UploadedAt time.Time
}

// JournalStore persists upload journal entries. It is a dedup ledger for the
// watch service, not a cache of remote state; listings always refetch from
// the remote store.
type JournalStore interface {
	// Get returns the entry for a local path, or domain.ErrNotFound.
	Get(ctx context.Context, localPath string) (*JournalEntry, error)

	// Put inserts or replaces the entry for entry.LocalPath.
	Put(ctx context.Context, entry JournalEntry) error

	// Delete removes the entry for a local path. Missing entries are not an
	// error.
	Delete(ctx context.Context, localPath string) error

	// List returns all entries ordered by local path.
	List(ctx context.Context) ([]JournalEntry, error)

	Close() error
}
