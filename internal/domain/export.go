package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ExportType string

const (
	ExportTypePDF  ExportType = "pdf"
	ExportTypeCSV  ExportType = "csv"
	ExportTypeJSON ExportType = "json"
)

func (t ExportType) Valid() bool {
	switch t {
	case ExportTypePDF, ExportTypeCSV, ExportTypeJSON:
		return true
	}
	return false
}

func (t ExportType) ContentType() string {
	switch t {
	case ExportTypePDF:
		return "application/pdf"
	case ExportTypeCSV:
		return "text/csv"
	case ExportTypeJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

func (t ExportType) Extension() string {
	return "." + string(t)
}

const (
	ExportTemplateDefault      = "default"
	ExportTemplateProfessional = "professional"
)

func ValidExportTemplate(tpl string) bool {
	return tpl == ExportTemplateDefault || tpl == ExportTemplateProfessional
}

// ExportSettings are the options resolved at export creation time and stored
// with the record. Template defaults to "default", all includes default to
// true. CSV exports always carry IncludeLogos = false: the format never
// embeds binary content.
type ExportSettings struct {
	Template        string `json:"template"`
	IncludeDomains  bool   `json:"include_domains"`
	IncludeMetadata bool   `json:"include_metadata"`
	IncludeLogos    bool   `json:"include_logos"`
	IncludeBranding bool   `json:"include_branding"`
}

func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Template:        ExportTemplateDefault,
		IncludeDomains:  true,
		IncludeMetadata: true,
		IncludeLogos:    true,
		IncludeBranding: true,
	}
}

func (s ExportSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export settings: %w", err)
	}
	return string(b), nil
}

func (s *ExportSettings) Scan(src interface{}) error {
	return scanJSON(src, s)
}

type Export struct {
	ID               int64          `json:"-" db:"id"`
	UUID             string         `json:"uuid" db:"uuid"`
	OwnerID          string         `json:"owner_id" db:"owner_id"`
	TargetType       string         `json:"exportable_type" db:"target_type"`
	TargetID         string         `json:"exportable_id" db:"target_id"`
	ExportType       ExportType     `json:"export_type" db:"export_type"`
	FilePath         string         `json:"-" db:"file_path"`
	FileSize         int64          `json:"file_size" db:"file_size"`
	DownloadCount    int64          `json:"download_count" db:"download_count"`
	LastDownloadedAt *time.Time     `json:"last_downloaded_at,omitempty" db:"last_downloaded_at"`
	ExpiresAt        time.Time      `json:"expires_at" db:"expires_at"`
	Settings         ExportSettings `json:"settings" db:"settings"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

func (e *Export) Expired(now time.Time) bool {
	return e.ExpiresAt.Before(now)
}

type ExportFilter struct {
	Page       int
	PerPage    int
	ExportType *ExportType
}

func (f ExportFilter) Normalize() ExportFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return f
}

func (f ExportFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

type ExportList struct {
	Items   []Export `json:"items"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

type FormatCount struct {
	Format ExportType `json:"format" db:"export_type"`
	Count  int64      `json:"count" db:"count"`
}

type ExportActivity struct {
	UUID       string     `json:"uuid" db:"uuid"`
	ExportType ExportType `json:"export_type" db:"export_type"`
	FileSize   int64      `json:"file_size" db:"file_size"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ExpiredArtifact is one purge claim: its record is already deleted by the
// time a caller sees it, leaving only the artifact to reclaim.
type ExpiredArtifact struct {
	UUID     string `db:"uuid"`
	FilePath string `db:"file_path"`
}

type ExportAnalytics struct {
	TotalExports   int64            `json:"total_exports"`
	TotalDownloads int64            `json:"total_downloads"`
	PopularFormats []FormatCount    `json:"popular_formats"`
	RecentActivity []ExportActivity `json:"recent_activity"`
}
