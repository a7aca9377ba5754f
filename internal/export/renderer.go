// Package export renders downloadable artifacts from a project in one of
// the supported formats.
package export

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"brandforge/internal/domain"
	"brandforge/internal/storage"
)

// Renderer produces artifact bytes for a project. Any failure is a plain
// error; the export service wraps it into ExportGenerationError.
type Renderer interface {
	Render(ctx context.Context, format domain.ExportType, project *domain.Project, settings domain.ExportSettings) ([]byte, error)
}

// DocumentRenderer dispatches to the per-format renderers. It reads logo
// images from artifact storage when a format embeds them.
type DocumentRenderer struct {
	storage storage.Storage
}

func NewDocumentRenderer(st storage.Storage) *DocumentRenderer {
	return &DocumentRenderer{storage: st}
}

func (r *DocumentRenderer) Render(ctx context.Context, format domain.ExportType, project *domain.Project, settings domain.ExportSettings) ([]byte, error) {
	if project == nil {
		return nil, fmt.Errorf("project is required")
	}

	switch format {
	case domain.ExportTypePDF:
		return r.renderPDF(ctx, project, settings)
	case domain.ExportTypeCSV:
		return renderCSV(project, settings)
	case domain.ExportTypeJSON:
		return renderJSON(project, settings)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Filename derives the download filename from the project's business name,
// e.g. "TechFlow Solutions" + pdf -> "techflow-solutions.pdf".
func Filename(project *domain.Project, format domain.ExportType) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(project.BusinessName), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "export"
	}
	return slug + format.Extension()
}
