package domain

import (
	"strings"
	"time"
)

// Status is the assessment status of a single evidence item.
type Status string

const (
	// StatusNotStarted means no assessor has looked at the evidence yet and
	// the candidate has not flagged it for review.
	StatusNotStarted Status = "NotStarted"

	// StatusPending is the default for freshly uploaded evidence awaiting
	// assessor review.
	StatusPending Status = "Pending"

	// StatusApproved means the assessor accepted the evidence.
	StatusApproved Status = "Approved"

	// StatusRejected means the assessor rejected the evidence outright.
	StatusRejected Status = "Rejected"

	// StatusNeedsRevision means the assessor returned the evidence to the
	// candidate with feedback.
	StatusNeedsRevision Status = "NeedsRevision"
)

// statusSeparators folds the underscore and hyphen spellings accepted on the
// CLI and MCP surfaces onto the space-separated forms matched below.
var statusSeparators = strings.NewReplacer("_", " ", "-", " ")

// ParseStatus maps the status strings observed in remote records to a Status.
// Historical records use several spellings for the same state; unknown values
// map to StatusPending so a record is never dropped over an unreadable status.
func ParseStatus(s string) Status {
	switch statusSeparators.Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "notstarted", "not started", "new":
		return StatusNotStarted
	case "approved", "accepted", "complete", "completed", "signed off":
		return StatusApproved
	case "rejected", "declined", "failed":
		return StatusRejected
	case "needsrevision", "needs revision", "revise", "returned", "resubmit":
		return StatusNeedsRevision
	default:
		return StatusPending
	}
}

// AssessmentState holds the assessor-written fields of an evidence item.
// Transitions are assessor-driven and unordered; any state may move to any
// other state.
type AssessmentState struct {
	Status         Status
	Feedback       string
	AssessorName   string
	AssessmentDate time.Time
}

// EvidenceRecord is the unit of evidence returned to callers. It is owned by
// the caller once returned; the engine keeps no long-lived copy.
//
// UnitCode and CriteriaCode are always stored with "." separators in memory
// even though the remote folder names use "_"; translating between the two is
// the resolver's job.
type EvidenceRecord struct {
	// ID is the remote object id, or a locally generated UUID when the
	// remote id could not be determined.
	ID string

	Name        string
	WebURL      string
	DownloadURL string
	Size        int64
	MIMEType    string
	CreatedAt   time.Time
	ModifiedAt  time.Time

	UnitCode     string
	CriteriaCode string
	Description  string

	Assessment AssessmentState
}

// EvidenceRef identifies an evidence item for update and delete operations.
// Either ID or WebURL may be empty, but not both; Path is the server-relative
// hierarchy path when known and is used by lower-level fallbacks.
type EvidenceRef struct {
	ID     string
	WebURL string
	Path   string
}
