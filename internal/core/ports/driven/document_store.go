package driven

import (
	"context"

	"github.com/voltfolio/evisync/internal/core/domain"
)

// ProgressFunc receives upload progress as a percentage in [0,100].
// Values are monotonically non-decreasing within one upload.
type ProgressFunc func(percent int)

// UploadRequest describes one file transfer into the remote hierarchy.
type UploadRequest struct {
	Data     []byte
	MIMEType string
	FileName string

	// FolderID is the id of the destination folder, as returned by
	// EnsureFolder.
	FolderID string

	// DirectOnly forces the single-request upload path regardless of size
	// and content type. Used by the PNG recovery strategy.
	DirectOnly bool

	// OnProgress is invoked after each transferred chunk. May be nil.
	OnProgress ProgressFunc
}

// DocumentStore is the driven port for the remote document store. The
// sharepoint connector implements it; the evidence service composes its
// operations into the public workflows.
type DocumentStore interface {
	// EnsureFolder materializes every segment of a slash-separated path under
	// the document root, creating missing folders, and returns the id of the
	// deepest segment. It is idempotent and tolerates creation races.
	EnsureFolder(ctx context.Context, path string) (string, error)

	// Upload transfers file bytes into the destination folder and returns
	// the resulting remote file object.
	Upload(ctx context.Context, req UploadRequest) (*domain.RemoteFile, error)

	// FetchMetadata resolves a view URL to a remote file and reconciles its
	// assessment fields into an EvidenceRecord. It never fails for "file not
	// found" or "fields unavailable"; those degrade to a synthesized or
	// basic record. Only network and auth failures propagate.
	FetchMetadata(ctx context.Context, viewURL string) (*domain.EvidenceRecord, error)

	// UpdateAssessment writes assessment fields back to the remote store.
	// Every write strategy is attempted; the call succeeds if any does.
	UpdateAssessment(ctx context.Context, ref domain.EvidenceRef, status domain.Status, feedback, assessor string) error

	// Delete removes an evidence file, falling back to a server-relative
	// path deletion if the primary id-addressed call fails.
	Delete(ctx context.Context, ref domain.EvidenceRef) error

	// ListChildren lists the immediate children of a hierarchy path.
	ListChildren(ctx context.Context, path string) ([]domain.RemoteFile, error)

	// SearchFiles runs a flat content search and returns matching files with
	// their parent paths. Used as the listing fallback when the hierarchy
	// walk yields nothing.
	SearchFiles(ctx context.Context, query string) ([]domain.RemoteFile, error)
}
