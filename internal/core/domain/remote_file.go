package domain

import "time"

// RemoteFile is the basic file object the remote store returns, before any
// assessment fields are reconciled onto it. Path is the slash-separated
// hierarchy path of the parent folder when the store reported one.
type RemoteFile struct {
	ID          string
	Name        string
	WebURL      string
	DownloadURL string
	Size        int64
	MIMEType    string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Path        string
	IsFolder    bool
}
