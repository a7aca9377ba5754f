package export

import (
	"encoding/json"
	"fmt"
	"time"

	"brandforge/internal/domain"
)

type jsonProject struct {
	UUID         string                 `json:"uuid"`
	BusinessName string                 `json:"business_name"`
	Description  *string                `json:"description"`
	Industry     *string                `json:"industry"`
	Status       domain.ProjectStatus   `json:"status"`
	Domains      []domain.DomainCheck   `json:"domains,omitempty"`
	Logos        []domain.Logo          `json:"logos,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type jsonMetadata struct {
	ExportType  domain.ExportType `json:"export_type"`
	GeneratedAt time.Time         `json:"generated_at"`
	Template    string            `json:"template"`
	RequestedBy string            `json:"requested_by"`
}

// renderJSON emits the project data alongside export metadata. The output is
// valid JSON for every input, including projects with null optional fields.
func renderJSON(project *domain.Project, settings domain.ExportSettings) ([]byte, error) {
	p := jsonProject{
		UUID:         project.UUID,
		BusinessName: project.BusinessName,
		Description:  project.Description,
		Industry:     project.Industry,
		Status:       project.Status,
		CreatedAt:    project.CreatedAt,
	}
	if settings.IncludeDomains {
		p.Domains = project.Domains
	}
	if settings.IncludeLogos {
		p.Logos = project.Logos
	}

	doc := map[string]interface{}{
		"project": p,
		"export": jsonMetadata{
			ExportType:  domain.ExportTypeJSON,
			GeneratedAt: time.Now().UTC(),
			Template:    settings.Template,
			RequestedBy: project.OwnerID,
		},
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export document: %w", err)
	}
	return out, nil
}
