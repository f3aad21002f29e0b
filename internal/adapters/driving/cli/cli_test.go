package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driving"
)

// stubEvidenceService satisfies driving.EvidenceService for command tests.
type stubEvidenceService struct {
	records  []domain.EvidenceRecord
	uploaded []driving.UploadInput
	assessed []domain.Status
	deleted  []domain.EvidenceRef
}

func (s *stubEvidenceService) UploadEvidence(_ context.Context, in driving.UploadInput) (*domain.EvidenceRecord, error) {
	s.uploaded = append(s.uploaded, in)
	return &domain.EvidenceRecord{
		ID:           "item-1",
		Name:         in.FileName,
		Size:         int64(len(in.Data)),
		UnitCode:     in.UnitCode,
		CriteriaCode: in.CriteriaCode,
		Assessment:   domain.AssessmentState{Status: domain.StatusPending},
	}, nil
}

func (s *stubEvidenceService) ListEvidence(context.Context, string) ([]domain.EvidenceRecord, error) {
	return s.records, nil
}

func (s *stubEvidenceService) UpdateAssessment(_ context.Context, _ domain.EvidenceRef, status domain.Status, _, _ string) error {
	s.assessed = append(s.assessed, status)
	return nil
}

func (s *stubEvidenceService) DeleteEvidence(_ context.Context, ref domain.EvidenceRef) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

// setupTestServices injects a stub service and returns a cleanup func.
func setupTestServices(stub *stubEvidenceService) func() {
	original := evidenceService
	evidenceService = stub
	return func() { evidenceService = original }
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer resetFlags(rootCmd)

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag on cmd and its subcommands to its default
// so persistent flag values set by one test do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "evisync version test-version-1.0.0")
}

func TestUploadCmd_RequiresFlags(t *testing.T) {
	defer setupTestServices(&stubEvidenceService{})()

	_, err := execute(t, "upload", "somefile.pdf")
	assert.Error(t, err)
}

func TestUploadCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "upload")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestListCmd_OutputsRecords(t *testing.T) {
	stub := &stubEvidenceService{records: []domain.EvidenceRecord{
		{
			Name:         "report.pdf",
			UnitCode:     "ELTK.03",
			CriteriaCode: "1.2",
			Assessment:   domain.AssessmentState{Status: domain.StatusApproved},
		},
	}}
	defer setupTestServices(stub)()

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "ELTK.03")
	assert.Contains(t, out, "Approved")
}

func TestListCmd_JSONOutput(t *testing.T) {
	stub := &stubEvidenceService{records: []domain.EvidenceRecord{
		{Name: "report.pdf", UnitCode: "ELTK.03"},
	}}
	defer setupTestServices(stub)()

	out, err := execute(t, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "report.pdf"`)
}

func TestListCmd_EmptyResult(t *testing.T) {
	defer setupTestServices(&stubEvidenceService{})()

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No evidence found.")
}

func TestAssessCmd_Executes(t *testing.T) {
	stub := &stubEvidenceService{}
	defer setupTestServices(stub)()

	out, err := execute(t, "assess", "item-1", "--status", "approved")
	require.NoError(t, err)
	assert.Contains(t, out, "Assessment recorded: Approved")
	assert.Equal(t, []domain.Status{domain.StatusApproved}, stub.assessed)
}

func TestAssessCmd_AcceptsAdvertisedSpellings(t *testing.T) {
	stub := &stubEvidenceService{}
	defer setupTestServices(stub)()

	// The help text offers needs_revision; it must not degrade to Pending.
	out, err := execute(t, "assess", "item-1", "--status", "needs_revision")
	require.NoError(t, err)
	assert.Contains(t, out, "Assessment recorded: NeedsRevision")
	assert.Equal(t, []domain.Status{domain.StatusNeedsRevision}, stub.assessed)
}

func TestDeleteCmd_UsesURLRef(t *testing.T) {
	stub := &stubEvidenceService{}
	defer setupTestServices(stub)()

	_, err := execute(t, "delete", "https://store.example/report.pdf")
	require.NoError(t, err)
	require.Len(t, stub.deleted, 1)
	assert.Equal(t, "https://store.example/report.pdf", stub.deleted[0].WebURL)
	assert.Empty(t, stub.deleted[0].ID)
}

func TestRefFromArg(t *testing.T) {
	assert.Equal(t, domain.EvidenceRef{WebURL: "https://x/y"}, refFromArg("https://x/y"))
	assert.Equal(t, domain.EvidenceRef{ID: "item-7"}, refFromArg("item-7"))
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}
