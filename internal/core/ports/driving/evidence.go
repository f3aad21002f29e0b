// Package driving defines the driving (inbound) ports: the public operations
// offered to the CLI, the MCP server, and other callers.
package driving

import (
	"context"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

// UploadInput describes one evidence upload.
type UploadInput struct {
	Data         []byte
	MIMEType     string
	FileName     string
	UnitCode     string
	CriteriaCode string

	// Reread, when set, is called to re-read the file before rejecting a
	// zero-length payload, so a transiently empty read does not fail the
	// upload. May be nil.
	Reread func() ([]byte, error)

	// OnProgress receives transfer progress. May be nil.
	OnProgress driven.ProgressFunc
}

// EvidenceService is the evidence synchronization engine's public surface.
type EvidenceService interface {
	// UploadEvidence validates, places and transfers one evidence file and
	// returns its normalized record with status Pending.
	UploadEvidence(ctx context.Context, in UploadInput) (*domain.EvidenceRecord, error)

	// ListEvidence walks the remote hierarchy and returns one record per
	// evidence file. unitFilter narrows the walk to a single unit code;
	// empty means all units. Individual file failures degrade to minimal
	// records instead of aborting the listing.
	ListEvidence(ctx context.Context, unitFilter string) ([]domain.EvidenceRecord, error)

	// UpdateAssessment writes status, feedback and assessor name for one
	// evidence item.
	UpdateAssessment(ctx context.Context, ref domain.EvidenceRef, status domain.Status, feedback, assessor string) error

	// DeleteEvidence removes one evidence item.
	DeleteEvidence(ctx context.Context, ref domain.EvidenceRef) error
}
