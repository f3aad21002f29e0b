package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{in: "Approved", want: StatusApproved},
		{in: "approved", want: StatusApproved},
		{in: "Signed Off", want: StatusApproved},
		{in: "Complete", want: StatusApproved},
		{in: "Rejected", want: StatusRejected},
		{in: "declined", want: StatusRejected},
		{in: "NeedsRevision", want: StatusNeedsRevision},
		{in: "Needs Revision", want: StatusNeedsRevision},
		{in: "resubmit", want: StatusNeedsRevision},
		{in: "Not Started", want: StatusNotStarted},
		// Separator spellings accepted on the CLI and MCP surfaces.
		{in: "needs_revision", want: StatusNeedsRevision},
		{in: "not_started", want: StatusNotStarted},
		{in: "signed-off", want: StatusApproved},
		{in: "Pending", want: StatusPending},
		// Unknown spellings degrade to Pending rather than dropping records.
		{in: "???", want: StatusPending},
		{in: "", want: StatusPending},
		{in: "  Approved  ", want: StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.in))
		})
	}
}
