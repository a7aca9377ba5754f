package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandforge/internal/domain"
)

func str(s string) *string { return &s }

func testProject() *domain.Project {
	return &domain.Project{
		ID:           7,
		UUID:         "0b8f7b3a-9cbb-4f2e-b37a-32e51f3a7e01",
		OwnerID:      "user-1",
		BusinessName: "TechFlow Solutions",
		Description:  str("Cloud consulting for startups"),
		Industry:     str("Technology"),
		Status:       domain.ProjectStatusCompleted,
		Domains: domain.DomainCheckList{
			{Name: "techflow.io", Available: true, CheckedAt: time.Now()},
			{Name: "techflow.com", Available: false, CheckedAt: time.Now()},
		},
		CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name     string
		business string
		format   domain.ExportType
		want     string
	}{
		{"simple", "TechFlow Solutions", domain.ExportTypePDF, "techflow-solutions.pdf"},
		{"punctuation", "Bob's Café & Bar!", domain.ExportTypeCSV, "bob-s-caf-bar.csv"},
		{"already clean", "acme", domain.ExportTypeJSON, "acme.json"},
		{"empty after slug", "---", domain.ExportTypePDF, "export.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProject()
			p.BusinessName = tt.business
			assert.Equal(t, tt.want, Filename(p, tt.format))
		})
	}
}

func TestFilenameIdempotent(t *testing.T) {
	p := testProject()
	first := Filename(p, domain.ExportTypePDF)
	p.BusinessName = strings.TrimSuffix(first, ".pdf")
	assert.Equal(t, first, Filename(p, domain.ExportTypePDF))
}

func TestRenderCSV(t *testing.T) {
	settings := domain.DefaultExportSettings()
	settings.IncludeLogos = false

	data, err := renderCSV(testProject(), settings)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header row plus one data row")

	header, row := records[0], records[1]
	assert.Equal(t, "Business Name", header[0])
	assert.Equal(t, "TechFlow Solutions", row[0])
	assert.Contains(t, header, "Domain Count")
	assert.Contains(t, row, "techflow.io")
	assert.Contains(t, header, "Logo Count")
}

func TestRenderCSVNoBinaryContent(t *testing.T) {
	p := testProject()
	p.Logos = domain.LogoList{{StorageKey: "logos/a.png", Style: "modern"}}

	// Even with logos attached and the toggle left on, CSV carries no
	// storage keys and no binary.
	settings := domain.DefaultExportSettings()
	data, err := renderCSV(p, settings)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "logos/a.png")
	for _, b := range data {
		assert.True(t, b == '\n' || b == '\r' || (b >= 0x20 && b < 0x80),
			"CSV must stay plain text, found byte 0x%02x", b)
	}
}

func TestRenderCSVNilOptionalFields(t *testing.T) {
	p := testProject()
	p.Description = nil
	p.Industry = nil
	p.Domains = nil

	data, err := renderCSV(p, domain.DefaultExportSettings())
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRenderJSON(t *testing.T) {
	data, err := renderJSON(testProject(), domain.DefaultExportSettings())
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "project")
	require.Contains(t, doc, "export")

	var meta jsonMetadata
	require.NoError(t, json.Unmarshal(doc["export"], &meta))
	assert.Equal(t, domain.ExportTypeJSON, meta.ExportType)
	assert.Equal(t, domain.ExportTemplateDefault, meta.Template)
	assert.Equal(t, "user-1", meta.RequestedBy)
}

func TestRenderJSONNilOptionalFields(t *testing.T) {
	p := testProject()
	p.Description = nil
	p.Industry = nil
	p.Domains = nil
	p.Logos = nil

	data, err := renderJSON(p, domain.DefaultExportSettings())
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "output must be valid JSON for every input")
}

func TestRenderJSONRespectsSettings(t *testing.T) {
	p := testProject()
	settings := domain.DefaultExportSettings()
	settings.IncludeDomains = false

	data, err := renderJSON(p, settings)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "techflow.io")
}

func TestRenderPDF(t *testing.T) {
	r := NewDocumentRenderer(nil) // storage untouched without logos

	for _, tpl := range []string{domain.ExportTemplateDefault, domain.ExportTemplateProfessional} {
		t.Run(tpl, func(t *testing.T) {
			settings := domain.DefaultExportSettings()
			settings.Template = tpl
			settings.IncludeLogos = false

			data, err := r.Render(context.Background(), domain.ExportTypePDF, testProject(), settings)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "must be a PDF document")
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	r := NewDocumentRenderer(nil)
	_, err := r.Render(context.Background(), domain.ExportType("xml"), testProject(), domain.DefaultExportSettings())
	assert.Error(t, err)
}

func TestRenderNilProject(t *testing.T) {
	r := NewDocumentRenderer(nil)
	_, err := r.Render(context.Background(), domain.ExportTypeJSON, nil, domain.DefaultExportSettings())
	assert.Error(t, err)
}
