package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/logger"
)

// Logical assessment attributes and the field names they have been stored
// under. Remote records created at different times use different field
// layouts; lookup tries each variant in priority order and takes the first
// non-empty match. Keep this table-driven: the remote schema has grown a new
// variant more than once.
type fieldAttr string

const (
	attrStatus      fieldAttr = "status"
	attrFeedback    fieldAttr = "feedback"
	attrAssessor    fieldAttr = "assessor"
	attrDate        fieldAttr = "date"
	attrUnit        fieldAttr = "unit"
	attrCriteria    fieldAttr = "criteria"
	attrDescription fieldAttr = "description"
)

var fieldVariants = map[fieldAttr][]string{
	attrStatus:      {"AssessmentStatus", "EvidenceStatus", "Status", "_Status", "OData__Status"},
	attrFeedback:    {"AssessorFeedback", "Feedback", "Comments", "_Comments"},
	attrAssessor:    {"AssessorName", "Assessor", "AssessedBy"},
	attrDate:        {"AssessmentDate", "AssessedDate", "DateAssessed"},
	attrUnit:        {"UnitCode", "Unit", "QualificationUnit"},
	attrCriteria:    {"CriteriaCode", "Criteria", "AssessmentCriteria"},
	attrDescription: {"EvidenceDescription", "Description"},
}

// first returns the first non-empty string value among the attribute's field
// name variants.
func (m fieldMap) first(attr fieldAttr) string {
	for _, name := range fieldVariants[attr] {
		if v, ok := m[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// FetchMetadata resolves a view URL and reconciles the remote file's
// assessment fields into an EvidenceRecord.
//
// "File not found" and "fields unavailable" are not failures here: the first
// degrades to a synthesized minimal record, the second to a basic record with
// status Pending and codes recovered from the path. Only network and auth
// failures propagate.
func (c *Client) FetchMetadata(ctx context.Context, viewURL string) (*domain.EvidenceRecord, error) {
	token := ResolveRelativePath(viewURL)
	logger.Debug().Str("url", viewURL).Stringer("kind", token.Kind).Msg("resolving evidence metadata")

	var (
		item *driveItem
		err  error
	)
	switch token.Kind {
	case TokenHierarchical:
		item, err = c.fetchItemByPath(ctx, token.Value)
	case TokenDirectID:
		item, err = c.fetchItemByID(ctx, token.Value)
	case TokenSourceDoc:
		item, err = c.searchOne(ctx, token.Value)
	default:
		return c.synthesizeRecord(viewURL), nil
	}

	if err != nil {
		if IsNotFound(err) {
			return c.synthesizeRecord(viewURL), nil
		}
		return nil, fmt.Errorf("fetch evidence object: %w", err)
	}
	if item == nil {
		return c.synthesizeRecord(viewURL), nil
	}

	rec := c.basicRecord(item, viewURL)

	fields, fieldsErr := c.fetchFields(ctx, item.ID)
	if fieldsErr != nil {
		// The fields sub-resource can be separately permissioned. Fall back
		// to the basic record rather than failing the whole fetch.
		logger.Debug().Err(fieldsErr).Str("id", item.ID).Msg("structured fields unavailable, using basic record")
		return rec, nil
	}

	mergeFields(rec, fields)
	return rec, nil
}

// basicRecord builds a record from file attributes alone: status Pending,
// unit and criteria recovered from the hierarchy path.
func (c *Client) basicRecord(item *driveItem, viewURL string) *domain.EvidenceRecord {
	f := item.toRemoteFile()
	webURL := f.WebURL
	if webURL == "" {
		webURL = viewURL
	}
	return &domain.EvidenceRecord{
		ID:           f.ID,
		Name:         f.Name,
		WebURL:       webURL,
		DownloadURL:  f.DownloadURL,
		Size:         f.Size,
		MIMEType:     f.MIMEType,
		CreatedAt:    f.CreatedAt,
		ModifiedAt:   f.ModifiedAt,
		UnitCode:     domain.UnitFromPath(f.Path),
		CriteriaCode: domain.CriteriaFromPath(f.Path),
		Assessment:   domain.AssessmentState{Status: domain.StatusPending},
	}
}

// synthesizeRecord builds the minimal record for a file that could not be
// located by any strategy.
func (c *Client) synthesizeRecord(viewURL string) *domain.EvidenceRecord {
	logger.Debug().Str("url", viewURL).Msg("synthesizing minimal evidence record")
	return &domain.EvidenceRecord{
		ID:         uuid.NewString(),
		Name:       GuessFileName(viewURL),
		WebURL:     viewURL,
		MIMEType:   "application/octet-stream",
		CreatedAt:  time.Now(),
		ModifiedAt: time.Now(),
		Assessment: domain.AssessmentState{Status: domain.StatusPending},
	}
}

// mergeFields overlays structured field values onto a basic record.
func mergeFields(rec *domain.EvidenceRecord, fields fieldMap) {
	if s := fields.first(attrStatus); s != "" {
		rec.Assessment.Status = domain.ParseStatus(s)
	}
	rec.Assessment.Feedback = fields.first(attrFeedback)
	rec.Assessment.AssessorName = fields.first(attrAssessor)
	if d := fields.first(attrDate); d != "" {
		if parsed, ok := parseFieldDate(d); ok {
			rec.Assessment.AssessmentDate = parsed
		}
	}
	if unit := fields.first(attrUnit); unit != "" {
		rec.UnitCode = domain.DecodeCode(unit)
	}
	if criteria := fields.first(attrCriteria); criteria != "" {
		rec.CriteriaCode = domain.FirstCriteriaPair(criteria)
	}
	rec.Description = fields.first(attrDescription)
}

func parseFieldDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fetchItemByID fetches a drive item by remote id.
func (c *Client) fetchItemByID(ctx context.Context, id string) (*driveItem, error) {
	var item driveItem
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/items/"+id, &item)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// fetchFields fetches the structured fields attached to a drive item.
func (c *Client) fetchFields(ctx context.Context, id string) (fieldMap, error) {
	var fields fieldMap
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/items/"+id+"/listItem/fields", &fields)
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// searchOne runs a content search for the given token and returns the first
// file hit, or nil when the index has nothing for it.
func (c *Client) searchOne(ctx context.Context, query string) (*driveItem, error) {
	var list itemList
	err := Retry(ctx, DefaultMaxAttempts, nil, func() error {
		return c.getJSON(ctx, "/root/search(q='"+url.PathEscape(query)+"')", &list)
	})
	if err != nil {
		return nil, err
	}
	for i := range list.Value {
		if list.Value[i].Folder == nil {
			return &list.Value[i], nil
		}
	}
	return nil, nil
}

// UpdateAssessment writes the assessment fields back to the remote store.
//
// Which field layout a given site accepts depends on remote configuration
// outside this engine's control, so every independent write strategy is
// attempted, even after one succeeds, to maximize the chance the remote
// index picks up the change. The overall operation succeeds if at least one
// strategy does; 404s from the others are expected and not surfaced.
func (c *Client) UpdateAssessment(ctx context.Context, ref domain.EvidenceRef, status domain.Status, feedback, assessor string) error {
	item, err := c.resolveRef(ctx, ref)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"AssessmentStatus": string(status),
		"AssessorFeedback": feedback,
		"AssessorName":     assessor,
		"AssessmentDate":   time.Now().UTC().Format(time.RFC3339),
	}

	strategies := []struct {
		name string
		run  func() error
	}{
		{name: "fields-by-id", run: func() error {
			return c.patchJSON(ctx, "/items/"+item.ID+"/listItem/fields", fields, nil)
		}},
		{name: "listitem-by-id", run: func() error {
			return c.patchJSON(ctx, "/items/"+item.ID+"/listItem", map[string]any{"fields": fields}, nil)
		}},
		{name: "fields-by-path", run: func() error {
			path := item.hierarchyPath()
			if path == "" {
				path = ref.Path
			}
			if path == "" {
				return fmt.Errorf("no hierarchy path for path-addressed write")
			}
			return c.patchJSON(ctx, "/root:/"+escapePath(path)+":/listItem/fields", fields, nil)
		}},
		{name: "fields-after-search", run: func() error {
			found, searchErr := c.searchOne(ctx, item.Name)
			if searchErr != nil {
				return searchErr
			}
			if found == nil {
				return fmt.Errorf("search returned no hit for %q", item.Name)
			}
			return c.patchJSON(ctx, "/items/"+found.ID+"/listItem/fields", fields, nil)
		}},
	}

	var failures []error
	succeeded := 0
	for _, s := range strategies {
		if strategyErr := s.run(); strategyErr != nil {
			logger.Debug().Err(strategyErr).Str("strategy", s.name).Msg("assessment write strategy failed")
			failures = append(failures, fmt.Errorf("%s: %w", s.name, strategyErr))
			continue
		}
		logger.Debug().Str("strategy", s.name).Msg("assessment write strategy succeeded")
		succeeded++
	}

	if succeeded == 0 {
		return fmt.Errorf("update assessment: all write strategies failed: %w", errors.Join(failures...))
	}
	return nil
}

// resolveRef turns an EvidenceRef into a concrete drive item.
func (c *Client) resolveRef(ctx context.Context, ref domain.EvidenceRef) (*driveItem, error) {
	if ref.ID != "" {
		return c.fetchItemByID(ctx, ref.ID)
	}
	if ref.Path != "" {
		return c.fetchItemByPath(ctx, ref.Path)
	}
	if ref.WebURL == "" {
		return nil, fmt.Errorf("resolve evidence ref: %w", domain.ErrInvalidInput)
	}

	token := ResolveRelativePath(ref.WebURL)
	switch token.Kind {
	case TokenHierarchical:
		return c.fetchItemByPath(ctx, token.Value)
	case TokenDirectID:
		return c.fetchItemByID(ctx, token.Value)
	case TokenSourceDoc:
		item, err := c.searchOne(ctx, token.Value)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, &APIError{StatusCode: 404, Code: "itemNotFound", Message: "no object for sourcedoc token", URL: ref.WebURL}
		}
		return item, nil
	default:
		return nil, fmt.Errorf("resolve evidence ref %q: %w", ref.WebURL, domain.ErrInvalidInput)
	}
}
