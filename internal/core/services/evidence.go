package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/voltfolio/evisync/internal/core/domain"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
	"github.com/voltfolio/evisync/internal/core/ports/driving"
	"github.com/voltfolio/evisync/internal/logger"
)

// Ensure EvidenceService implements the interface.
var _ driving.EvidenceService = (*EvidenceService)(nil)

// imageExtensions maps image content types to the extension the remote
// store's previewers expect. Uploads are renamed to match so a mislabelled
// file doesn't break previews.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// EvidenceService is the evidence synchronization engine: it composes the
// document store's folder materialization, transfer and metadata operations
// into the public upload/list/assess/delete workflows.
type EvidenceService struct {
	store driven.DocumentStore
}

// NewEvidenceService creates the engine over a document store.
func NewEvidenceService(store driven.DocumentStore) *EvidenceService {
	return &EvidenceService{store: store}
}

// UploadEvidence validates and uploads one evidence file, returning its
// normalized record with status Pending.
func (s *EvidenceService) UploadEvidence(ctx context.Context, in driving.UploadInput) (*domain.EvidenceRecord, error) {
	if len(in.Data) == 0 {
		// A zero-length read can be transient (the file may still be
		// flushing); confirm with one re-read before rejecting.
		if in.Reread != nil {
			data, err := in.Reread()
			if err == nil && len(data) > 0 {
				in.Data = data
			}
		}
		if len(in.Data) == 0 {
			return nil, fmt.Errorf("upload %q: %w", in.FileName, domain.ErrEmptyFile)
		}
	}
	if in.UnitCode == "" || in.CriteriaCode == "" {
		return nil, fmt.Errorf("upload %q: unit and criteria codes are required: %w", in.FileName, domain.ErrInvalidInput)
	}

	unit := in.UnitCode
	criteria := domain.FirstCriteriaPair(in.CriteriaCode)
	destPath := fmt.Sprintf("%s/%s/%s", domain.EvidenceRoot, domain.EncodeCode(unit), domain.EncodeCode(criteria))
	fileName := normalizeExtension(in.FileName, in.MIMEType)

	logger.Info().
		Str("file", fileName).
		Str("unit", unit).
		Str("criteria", criteria).
		Int("size", len(in.Data)).
		Msg("uploading evidence")

	folderID, err := s.store.EnsureFolder(ctx, destPath)
	if err != nil {
		return nil, fmt.Errorf("materialize %q: %w", destPath, err)
	}

	req := driven.UploadRequest{
		Data:       in.Data,
		MIMEType:   in.MIMEType,
		FileName:   fileName,
		FolderID:   folderID,
		OnProgress: in.OnProgress,
	}

	file, err := s.store.Upload(ctx, req)
	if err != nil && in.MIMEType == "image/png" {
		// PNG uploads through the normal paths have failed outright on some
		// site configurations; give the single-shot path one more chance
		// before giving up.
		logger.Warn().Err(err).Str("file", fileName).Msg("upload failed, retrying PNG via direct path")
		req.DirectOnly = true
		file, err = s.store.Upload(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", fileName, err)
	}

	rec := &domain.EvidenceRecord{
		ID:           file.ID,
		Name:         file.Name,
		WebURL:       file.WebURL,
		DownloadURL:  file.DownloadURL,
		Size:         file.Size,
		MIMEType:     in.MIMEType,
		CreatedAt:    file.CreatedAt,
		ModifiedAt:   file.ModifiedAt,
		UnitCode:     unit,
		CriteriaCode: criteria,
		Assessment:   domain.AssessmentState{Status: domain.StatusPending},
	}
	if file.MIMEType != "" {
		rec.MIMEType = file.MIMEType
	}
	return rec, nil
}

// ListEvidence walks Evidence/<unit>/<criteria>/<file> two levels deep and
// reconciles metadata per file. Partial results beat total failure: a single
// file or folder failing degrades to a minimal record or a skipped folder.
// When the walk finds no unit folders at all, a flat search fallback
// reconstructs records from returned paths.
func (s *EvidenceService) ListEvidence(ctx context.Context, unitFilter string) ([]domain.EvidenceRecord, error) {
	units, err := s.unitFolders(ctx, unitFilter)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		logger.Debug().Msg("no unit folders found, using flat search fallback")
		return s.listFlat(ctx, unitFilter)
	}

	var records []domain.EvidenceRecord
	for _, unit := range units {
		unitPath := domain.EvidenceRoot + "/" + unit
		criteriaFolders, listErr := s.store.ListChildren(ctx, unitPath)
		if listErr != nil {
			logger.Warn().Err(listErr).Str("unit", unit).Msg("skipping unreadable unit folder")
			continue
		}

		for _, criteria := range criteriaFolders {
			if !criteria.IsFolder {
				continue
			}
			files, filesErr := s.store.ListChildren(ctx, unitPath+"/"+criteria.Name)
			if filesErr != nil {
				logger.Warn().Err(filesErr).Str("criteria", criteria.Name).Msg("skipping unreadable criteria folder")
				continue
			}
			for i := range files {
				if files[i].IsFolder {
					continue
				}
				records = append(records, s.reconcileListed(ctx, files[i], unit, criteria.Name))
			}
		}
	}
	if len(records) == 0 && unitFilter != "" {
		// A filtered walk that found nothing may mean the unit folder does
		// not exist under the hierarchy; the flat search still finds files
		// uploaded outside it.
		return s.listFlat(ctx, unitFilter)
	}
	return records, nil
}

// unitFolders returns the encoded unit folder names to walk.
func (s *EvidenceService) unitFolders(ctx context.Context, unitFilter string) ([]string, error) {
	if unitFilter != "" {
		return []string{domain.EncodeCode(unitFilter)}, nil
	}

	children, err := s.store.ListChildren(ctx, domain.EvidenceRoot)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// The hierarchy doesn't exist yet; the caller falls back to the
			// flat search.
			return nil, nil
		}
		return nil, fmt.Errorf("list units: %w", err)
	}

	var units []string
	for i := range children {
		if children[i].IsFolder {
			units = append(units, children[i].Name)
		}
	}
	return units, nil
}

// reconcileListed fetches full metadata for one listed file, degrading to a
// minimal record built from listing attributes when the fetch fails.
func (s *EvidenceService) reconcileListed(ctx context.Context, file domain.RemoteFile, unitSegment, criteriaSegment string) domain.EvidenceRecord {
	rec, err := s.store.FetchMetadata(ctx, file.WebURL)
	if err != nil {
		logger.Warn().Err(err).Str("file", file.Name).Msg("metadata fetch failed, recording minimal entry")
		return minimalRecord(file, unitSegment, criteriaSegment)
	}
	if rec.UnitCode == "" {
		rec.UnitCode = domain.DecodeCode(unitSegment)
	}
	if rec.CriteriaCode == "" {
		rec.CriteriaCode = domain.FirstCriteriaPair(criteriaSegment)
	}
	return *rec
}

// listFlat is the fallback listing used when the hierarchy walk yields no
// unit folders: a flat search with unit and criteria codes reconstructed
// from the returned path strings.
func (s *EvidenceService) listFlat(ctx context.Context, unitFilter string) ([]domain.EvidenceRecord, error) {
	files, err := s.store.SearchFiles(ctx, domain.EvidenceRoot)
	if err != nil {
		return nil, fmt.Errorf("flat evidence search: %w", err)
	}

	var records []domain.EvidenceRecord
	for i := range files {
		unit := domain.UnitFromPath(files[i].Path)
		if unit == "" {
			continue
		}
		if unitFilter != "" && !strings.EqualFold(unit, unitFilter) {
			continue
		}
		rec := minimalRecord(files[i], "", "")
		rec.UnitCode = unit
		rec.CriteriaCode = domain.CriteriaFromPath(files[i].Path)
		records = append(records, rec)
	}
	return records, nil
}

// UpdateAssessment writes assessment fields for one evidence item.
func (s *EvidenceService) UpdateAssessment(ctx context.Context, ref domain.EvidenceRef, status domain.Status, feedback, assessor string) error {
	if ref.ID == "" && ref.WebURL == "" && ref.Path == "" {
		return fmt.Errorf("update assessment: empty evidence ref: %w", domain.ErrInvalidInput)
	}
	return s.store.UpdateAssessment(ctx, ref, status, feedback, assessor)
}

// DeleteEvidence removes one evidence item.
func (s *EvidenceService) DeleteEvidence(ctx context.Context, ref domain.EvidenceRef) error {
	if ref.ID == "" && ref.WebURL == "" && ref.Path == "" {
		return fmt.Errorf("delete evidence: empty evidence ref: %w", domain.ErrInvalidInput)
	}
	return s.store.Delete(ctx, ref)
}

// minimalRecord builds a record from listing attributes alone.
func minimalRecord(file domain.RemoteFile, unitSegment, criteriaSegment string) domain.EvidenceRecord {
	return domain.EvidenceRecord{
		ID:           file.ID,
		Name:         file.Name,
		WebURL:       file.WebURL,
		DownloadURL:  file.DownloadURL,
		Size:         file.Size,
		MIMEType:     file.MIMEType,
		CreatedAt:    file.CreatedAt,
		ModifiedAt:   file.ModifiedAt,
		UnitCode:     domain.DecodeCode(unitSegment),
		CriteriaCode: domain.FirstCriteriaPair(criteriaSegment),
		Assessment:   domain.AssessmentState{Status: domain.StatusPending},
	}
}

// normalizeExtension renames image files so the extension matches the
// declared content type.
func normalizeExtension(fileName, mimeType string) string {
	want, ok := imageExtensions[mimeType]
	if !ok {
		return fileName
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == want || (want == ".jpg" && ext == ".jpeg") {
		return fileName
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName)) + want
}
