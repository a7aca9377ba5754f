package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"brandforge/internal/domain"
)

// renderCSV emits a header row and one data row for the project. CSV never
// carries binary logo content; only the logo count survives as metadata.
func renderCSV(project *domain.Project, settings domain.ExportSettings) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Business Name", "Description", "Status", "Industry"}
	row := []string{
		project.BusinessName,
		strValue(project.Description),
		string(project.Status),
		strValue(project.Industry),
	}

	if settings.IncludeDomains {
		header = append(header, "Domain Count", "Available Domains")
		available := make([]string, 0, len(project.Domains))
		for _, d := range project.Domains {
			if d.Available {
				available = append(available, d.Name)
			}
		}
		row = append(row,
			strconv.Itoa(len(project.Domains)),
			strings.Join(available, "; "),
		)
	}

	header = append(header, "Logo Count")
	row = append(row, strconv.Itoa(len(project.Logos)))

	if settings.IncludeMetadata {
		header = append(header, "Created At", "Exported At")
		row = append(row,
			project.CreatedAt.UTC().Format(time.RFC3339),
			time.Now().UTC().Format(time.RFC3339),
		)
	}

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.Write(row); err != nil {
		return nil, fmt.Errorf("failed to write CSV row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
