package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driving"
)

// fakeEvidenceService is a scriptable EvidenceService for handler tests.
type fakeEvidenceService struct {
	records []domain.EvidenceRecord
	listErr error

	assessed []struct {
		ref    domain.EvidenceRef
		status domain.Status
	}
}

func (f *fakeEvidenceService) UploadEvidence(context.Context, driving.UploadInput) (*domain.EvidenceRecord, error) {
	return nil, errors.New("not used")
}

func (f *fakeEvidenceService) ListEvidence(_ context.Context, unitFilter string) ([]domain.EvidenceRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if unitFilter == "" {
		return f.records, nil
	}
	var out []domain.EvidenceRecord
	for _, r := range f.records {
		if r.UnitCode == unitFilter {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEvidenceService) UpdateAssessment(_ context.Context, ref domain.EvidenceRef, status domain.Status, _, _ string) error {
	f.assessed = append(f.assessed, struct {
		ref    domain.EvidenceRef
		status domain.Status
	}{ref, status})
	return nil
}

func (f *fakeEvidenceService) DeleteEvidence(context.Context, domain.EvidenceRef) error {
	return nil
}

func newTestServer(t *testing.T, svc driving.EvidenceService) *Server {
	t.Helper()
	s, err := NewServer(svc)
	require.NoError(t, err)
	return s
}

func sampleRecords() []domain.EvidenceRecord {
	return []domain.EvidenceRecord{
		{
			ID:           "item-1",
			Name:         "report.pdf",
			WebURL:       "https://store.example/report.pdf",
			UnitCode:     "ELTK.03",
			CriteriaCode: "1.2",
			Assessment:   domain.AssessmentState{Status: domain.StatusApproved, AssessorName: "J. Doe"},
		},
		{
			ID:           "item-2",
			Name:         "photo.png",
			WebURL:       "https://store.example/photo.png",
			UnitCode:     "UNIT2",
			CriteriaCode: "2.1",
			Assessment:   domain.AssessmentState{Status: domain.StatusPending},
		},
	}
}

func TestNewServerRequiresEvidenceService(t *testing.T) {
	_, err := NewServer(nil)
	assert.ErrorIs(t, err, ErrMissingEvidenceService)
}

func TestHandleListEvidence(t *testing.T) {
	svc := &fakeEvidenceService{records: sampleRecords()}
	s := newTestServer(t, svc)

	_, out, err := s.handleListEvidence(context.Background(), nil, ListEvidenceInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, string(domain.StatusApproved), out.Evidence[0].Status)
	assert.Equal(t, "ELTK.03", out.Evidence[0].Unit)
}

func TestHandleListEvidenceUnitFilter(t *testing.T) {
	svc := &fakeEvidenceService{records: sampleRecords()}
	s := newTestServer(t, svc)

	_, out, err := s.handleListEvidence(context.Background(), nil, ListEvidenceInput{Unit: "UNIT2"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "photo.png", out.Evidence[0].Name)
}

func TestHandleGetEvidence(t *testing.T) {
	svc := &fakeEvidenceService{records: sampleRecords()}
	s := newTestServer(t, svc)

	_, out, err := s.handleGetEvidence(context.Background(), nil, GetEvidenceInput{ID: "item-2"})
	require.NoError(t, err)
	assert.Equal(t, "photo.png", out.Name)

	_, out, err = s.handleGetEvidence(context.Background(), nil, GetEvidenceInput{WebURL: "https://store.example/REPORT.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "item-1", out.ID)
}

func TestHandleGetEvidenceNotFound(t *testing.T) {
	svc := &fakeEvidenceService{records: sampleRecords()}
	s := newTestServer(t, svc)

	_, _, err := s.handleGetEvidence(context.Background(), nil, GetEvidenceInput{ID: "item-99"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleGetEvidenceRequiresSelector(t *testing.T) {
	s := newTestServer(t, &fakeEvidenceService{})
	_, _, err := s.handleGetEvidence(context.Background(), nil, GetEvidenceInput{})
	assert.Error(t, err)
}

func TestHandleUpdateAssessment(t *testing.T) {
	svc := &fakeEvidenceService{}
	s := newTestServer(t, svc)

	_, out, err := s.handleUpdateAssessment(context.Background(), nil, UpdateAssessmentInput{
		ID:       "item-1",
		Status:   "Needs Revision",
		Feedback: "missing witness signature",
		Assessor: "J. Doe",
	})
	require.NoError(t, err)
	assert.True(t, out.Updated)
	assert.Equal(t, string(domain.StatusNeedsRevision), out.Status)
	require.Len(t, svc.assessed, 1)
	assert.Equal(t, "item-1", svc.assessed[0].ref.ID)
	assert.Equal(t, domain.StatusNeedsRevision, svc.assessed[0].status)
}

func TestHandleUpdateAssessmentUnderscoreSpelling(t *testing.T) {
	svc := &fakeEvidenceService{}
	s := newTestServer(t, svc)

	// The tool schema documents needs_revision; it must parse to the real
	// status, not degrade to Pending.
	_, out, err := s.handleUpdateAssessment(context.Background(), nil, UpdateAssessmentInput{
		ID:     "item-1",
		Status: "needs_revision",
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusNeedsRevision), out.Status)
	require.Len(t, svc.assessed, 1)
	assert.Equal(t, domain.StatusNeedsRevision, svc.assessed[0].status)
}
