package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voltfolio/evisync/internal/core/domain"
)

// ListEvidenceInput is the input schema for the list_evidence tool.
type ListEvidenceInput struct {
	Unit string `json:"unit,omitempty" jsonschema:"qualification unit code to filter by, e.g. ELTK.03; empty lists all units"`
}

// ListEvidenceOutput is the output schema for the list_evidence tool.
type ListEvidenceOutput struct {
	Evidence []EvidenceOutput `json:"evidence"`
	Count    int              `json:"count"`
}

// EvidenceOutput represents a single evidence file.
type EvidenceOutput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	WebURL       string `json:"web_url"`
	Size         int64  `json:"size"`
	Unit         string `json:"unit"`
	Criteria     string `json:"criteria"`
	Status       string `json:"status"`
	Feedback     string `json:"feedback,omitempty"`
	Assessor     string `json:"assessor,omitempty"`
	AssessedAt   string `json:"assessed_at,omitempty"`
	ModifiedAt   string `json:"modified_at,omitempty"`
}

// GetEvidenceInput is the input schema for the get_evidence tool.
type GetEvidenceInput struct {
	ID     string `json:"id,omitempty" jsonschema:"remote file id of the evidence item"`
	WebURL string `json:"web_url,omitempty" jsonschema:"viewer URL of the evidence item"`
}

// UpdateAssessmentInput is the input schema for the update_assessment tool.
type UpdateAssessmentInput struct {
	ID       string `json:"id,omitempty" jsonschema:"remote file id of the evidence item"`
	WebURL   string `json:"web_url,omitempty" jsonschema:"viewer URL of the evidence item"`
	Status   string `json:"status" jsonschema:"assessment outcome: approved, rejected, needs_revision or pending"`
	Feedback string `json:"feedback,omitempty" jsonschema:"assessor feedback for the learner"`
	Assessor string `json:"assessor,omitempty" jsonschema:"name of the assessor recording the outcome"`
}

// UpdateAssessmentOutput is the output schema for the update_assessment tool.
type UpdateAssessmentOutput struct {
	Updated bool   `json:"updated"`
	Status  string `json:"status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_evidence",
		Description: "List evidence files in the remote store, optionally filtered by unit code",
	}, s.handleListEvidence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_evidence",
		Description: "Fetch one evidence file by id or viewer URL",
	}, s.handleGetEvidence)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_assessment",
		Description: "Record an assessment outcome (status, feedback, assessor) on an evidence file",
	}, s.handleUpdateAssessment)
}

// handleListEvidence handles the list_evidence tool invocation.
func (s *Server) handleListEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEvidenceInput,
) (*mcp.CallToolResult, ListEvidenceOutput, error) {
	records, err := s.evidence.ListEvidence(ctx, input.Unit)
	if err != nil {
		return nil, ListEvidenceOutput{}, err
	}

	output := ListEvidenceOutput{
		Evidence: make([]EvidenceOutput, len(records)),
		Count:    len(records),
	}
	for i := range records {
		output.Evidence[i] = toEvidenceOutput(records[i])
	}
	return nil, output, nil
}

// handleGetEvidence handles the get_evidence tool invocation.
func (s *Server) handleGetEvidence(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetEvidenceInput,
) (*mcp.CallToolResult, EvidenceOutput, error) {
	if input.ID == "" && input.WebURL == "" {
		return nil, EvidenceOutput{}, fmt.Errorf("id or web_url is required")
	}

	records, err := s.evidence.ListEvidence(ctx, "")
	if err != nil {
		return nil, EvidenceOutput{}, err
	}

	for i := range records {
		if (input.ID != "" && records[i].ID == input.ID) ||
			(input.WebURL != "" && strings.EqualFold(records[i].WebURL, input.WebURL)) {
			return nil, toEvidenceOutput(records[i]), nil
		}
	}
	return nil, EvidenceOutput{}, fmt.Errorf("evidence not found: %w", domain.ErrNotFound)
}

// handleUpdateAssessment handles the update_assessment tool invocation.
func (s *Server) handleUpdateAssessment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateAssessmentInput,
) (*mcp.CallToolResult, UpdateAssessmentOutput, error) {
	status := domain.ParseStatus(input.Status)
	ref := domain.EvidenceRef{ID: input.ID, WebURL: input.WebURL}

	if err := s.evidence.UpdateAssessment(ctx, ref, status, input.Feedback, input.Assessor); err != nil {
		return nil, UpdateAssessmentOutput{}, err
	}
	return nil, UpdateAssessmentOutput{Updated: true, Status: string(status)}, nil
}

func toEvidenceOutput(rec domain.EvidenceRecord) EvidenceOutput {
	out := EvidenceOutput{
		ID:       rec.ID,
		Name:     rec.Name,
		WebURL:   rec.WebURL,
		Size:     rec.Size,
		Unit:     rec.UnitCode,
		Criteria: rec.CriteriaCode,
		Status:   string(rec.Assessment.Status),
		Feedback: rec.Assessment.Feedback,
		Assessor: rec.Assessment.AssessorName,
	}
	if !rec.Assessment.AssessmentDate.IsZero() {
		out.AssessedAt = rec.Assessment.AssessmentDate.Format(time.RFC3339)
	}
	if !rec.ModifiedAt.IsZero() {
		out.ModifiedAt = rec.ModifiedAt.Format(time.RFC3339)
	}
	return out
}
