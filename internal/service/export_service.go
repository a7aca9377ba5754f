package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"brandforge/internal/domain"
	"brandforge/internal/export"
	"brandforge/internal/secure"
	"brandforge/internal/storage"
)

const (
	minExpiresInDays = 1
	maxExpiresInDays = 30
)

// ExportRepo is the persistence surface the export manager needs.
type ExportRepo interface {
	Create(ctx context.Context, export *domain.Export) error
	GetByUUID(ctx context.Context, uuid string) (*domain.Export, error)
	GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Export, error)
	IncrementDownload(ctx context.Context, id int64, now time.Time) (bool, error)
	DeleteOwned(ctx context.Context, uuid, ownerID string) (string, error)
	ClaimExpired(ctx context.Context, now time.Time) ([]domain.ExpiredArtifact, error)
	ListByOwner(ctx context.Context, ownerID string, filter domain.ExportFilter) (*domain.ExportList, error)
	Analytics(ctx context.Context, ownerID string) (*domain.ExportAnalytics, error)
}

type ExportService struct {
	exportRepo    ExportRepo
	resolver      *TargetResolver
	renderer      export.Renderer
	storage       storage.Storage
	renderTimeout time.Duration
	log           zerolog.Logger

	now func() time.Time
}

func NewExportService(
	exportRepo ExportRepo,
	resolver *TargetResolver,
	renderer export.Renderer,
	st storage.Storage,
	renderTimeout time.Duration,
	log zerolog.Logger,
) *ExportService {
	return &ExportService{
		exportRepo:    exportRepo,
		resolver:      resolver,
		renderer:      renderer,
		storage:       st,
		renderTimeout: renderTimeout,
		log:           log.With().Str("component", "export_service").Logger(),
		now:           time.Now,
	}
}

type CreateExportRequest struct {
	TargetType      string            `json:"exportable_type"`
	TargetID        string            `json:"exportable_id"`
	ExportType      domain.ExportType `json:"export_type"`
	ExpiresInDays   int               `json:"expires_in_days"`
	Template        string            `json:"template,omitempty"`
	IncludeDomains  *bool             `json:"include_domains,omitempty"`
	IncludeMetadata *bool             `json:"include_metadata,omitempty"`
	IncludeLogos    *bool             `json:"include_logos,omitempty"`
	IncludeBranding *bool             `json:"include_branding,omitempty"`
}

func (req CreateExportRequest) resolveSettings() domain.ExportSettings {
	settings := domain.DefaultExportSettings()
	if req.Template != "" {
		settings.Template = req.Template
	}
	if req.IncludeDomains != nil {
		settings.IncludeDomains = *req.IncludeDomains
	}
	if req.IncludeMetadata != nil {
		settings.IncludeMetadata = *req.IncludeMetadata
	}
	if req.IncludeLogos != nil {
		settings.IncludeLogos = *req.IncludeLogos
	}
	if req.IncludeBranding != nil {
		settings.IncludeBranding = *req.IncludeBranding
	}
	// CSV never embeds binary logo content, whatever the request said.
	if req.ExportType == domain.ExportTypeCSV {
		settings.IncludeLogos = false
	}
	return settings
}

// CreateExport validates the request, renders the artifact under the time
// budget, writes it to storage, and persists the record. Creation is
// all-or-nothing: a failed record insert removes the artifact again.
func (s *ExportService) CreateExport(ctx context.Context, ownerID string, req CreateExportRequest) (*domain.Export, error) {
	verr := &domain.ValidationError{}

	if !req.ExportType.Valid() {
		verr.Add("export_type", "must be pdf, csv or json")
	}
	if req.ExpiresInDays < minExpiresInDays || req.ExpiresInDays > maxExpiresInDays {
		verr.Add("expires_in_days", fmt.Sprintf("must be between %d and %d", minExpiresInDays, maxExpiresInDays))
	}
	if req.Template != "" && !domain.ValidExportTemplate(req.Template) {
		verr.Add("template", "unknown template")
	}

	var project *domain.Project
	if !s.resolver.Known(req.TargetType) {
		verr.Add("exportable_type", "unknown exportable type")
	} else {
		target, err := s.resolver.Resolve(ctx, req.TargetType, req.TargetID)
		var notFound *domain.NotFoundError
		switch {
		case errors.As(err, &notFound):
			verr.Add("exportable_id", "target not found")
		case err != nil:
			return nil, fmt.Errorf("failed to resolve export target: %w", err)
		case target.TargetOwner() != ownerID:
			verr.Add("exportable_id", "target not found")
		case !target.TargetCompleted():
			verr.Add("exportable_id", "target must be completed before export")
		default:
			p, ok := target.(*domain.Project)
			if !ok {
				verr.Add("exportable_type", "type cannot be exported")
			} else {
				project = p
			}
		}
	}

	if !verr.Empty() {
		return nil, verr
	}

	settings := req.resolveSettings()
	now := s.now()

	data, err := s.renderWithBudget(ctx, req.ExportType, project, settings)
	if err != nil {
		return nil, &domain.ExportGenerationError{Cause: err}
	}

	uuid := secure.NewOpaqueID()
	key := "exports/" + uuid + req.ExportType.Extension()

	size, err := s.storage.Save(ctx, key, bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ExportGenerationError{Cause: fmt.Errorf("failed to store artifact: %w", err)}
	}

	record := &domain.Export{
		UUID:       uuid,
		OwnerID:    ownerID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		ExportType: req.ExportType,
		FilePath:   key,
		FileSize:   size,
		ExpiresAt:  now.AddDate(0, 0, req.ExpiresInDays),
		Settings:   settings,
	}

	if err := s.exportRepo.Create(ctx, record); err != nil {
		// No record may point at nothing and no artifact may float without a
		// record: roll the artifact back.
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", key).Msg("failed to roll back orphaned artifact")
		}
		return nil, &domain.ExportGenerationError{Cause: fmt.Errorf("failed to persist export record: %w", err)}
	}

	s.log.Info().Str("export", uuid).Str("type", string(req.ExportType)).Int64("bytes", size).Msg("export created")
	return record, nil
}

// renderWithBudget runs the renderer under the configured deadline. A hung
// renderer surfaces as a timeout error instead of blocking the caller.
func (s *ExportService) renderWithBudget(ctx context.Context, format domain.ExportType, project *domain.Project, settings domain.ExportSettings) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		data, err := s.renderer.Render(rctx, format, project, settings)
		ch <- result{data: data, err: err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-rctx.Done():
		return nil, fmt.Errorf("render exceeded time budget: %w", rctx.Err())
	}
}

// Download is a ready-to-stream export artifact.
type Download struct {
	Export      *domain.Export
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// ServeDownload returns the artifact stream and bumps the download counter.
// The counter update is conditional on the row still being unexpired and
// unclaimed, so a purge racing this call wins and the client sees 410.
func (s *ExportService) ServeDownload(ctx context.Context, uuid string) (*Download, error) {
	record, err := s.exportRepo.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if record.Expired(now) {
		return nil, &domain.GoneError{Resource: "export"}
	}

	exists, err := s.storage.Exists(ctx, record.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check artifact: %w", err)
	}
	if !exists {
		return nil, &domain.NotFoundError{Resource: "export file"}
	}

	counted, err := s.exportRepo.IncrementDownload(ctx, record.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count download: %w", err)
	}
	if !counted {
		return nil, &domain.GoneError{Resource: "export"}
	}

	body, err := s.storage.Open(ctx, record.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: "export file"}
		}
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}

	return &Download{
		Export:      record,
		Body:        body,
		Filename:    s.downloadFilename(ctx, record),
		ContentType: record.ExportType.ContentType(),
	}, nil
}

// downloadFilename derives the attachment name from the target entity's
// name. If the target is gone, the opaque id stands in.
func (s *ExportService) downloadFilename(ctx context.Context, record *domain.Export) string {
	target, err := s.resolver.Resolve(ctx, record.TargetType, record.TargetID)
	if err != nil {
		return record.UUID + record.ExportType.Extension()
	}
	if project, ok := target.(*domain.Project); ok {
		return export.Filename(project, record.ExportType)
	}
	return record.UUID + record.ExportType.Extension()
}

// DeleteExport removes the record and its artifact.
func (s *ExportService) DeleteExport(ctx context.Context, ownerID, uuid string) error {
	filePath, err := s.exportRepo.DeleteOwned(ctx, uuid, ownerID)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, filePath); err != nil {
		// The record is gone; a leftover artifact is reclaimed by the sweep's
		// tolerance for missing rows, so log and move on.
		s.log.Error().Err(err).Str("key", filePath).Msg("failed to delete export artifact")
	}
	return nil
}

// CleanupExpiredExports claims every expired record and removes the
// artifacts, tolerating ones already missing. Safe to re-run; a second pass
// finds nothing and returns 0.
func (s *ExportService) CleanupExpiredExports(ctx context.Context) (int, error) {
	claimed, err := s.exportRepo.ClaimExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to claim expired exports: %w", err)
	}

	for _, e := range claimed {
		if err := s.storage.Delete(ctx, e.FilePath); err != nil {
			s.log.Error().Err(err).Str("export", e.UUID).Str("key", e.FilePath).Msg("failed to delete expired artifact")
		}
	}

	if len(claimed) > 0 {
		s.log.Info().Int("count", len(claimed)).Msg("expired exports removed")
	}
	return len(claimed), nil
}

func (s *ExportService) GetOwnedExport(ctx context.Context, ownerID, uuid string) (*domain.Export, error) {
	return s.exportRepo.GetOwned(ctx, uuid, ownerID)
}

func (s *ExportService) GetUserExports(ctx context.Context, ownerID string, filter domain.ExportFilter) (*domain.ExportList, error) {
	list, err := s.exportRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	return list, nil
}

func (s *ExportService) GetExportAnalytics(ctx context.Context, ownerID string) (*domain.ExportAnalytics, error) {
	analytics, err := s.exportRepo.Analytics(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute export analytics: %w", err)
	}
	return analytics, nil
}
