package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusGenerating ProjectStatus = "generating"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusFailed     ProjectStatus = "failed"
)

// DomainCheck is one checked candidate domain for a project.
type DomainCheck struct {
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

// Logo is a generated logo attached to a project. The image itself lives in
// artifact storage under StorageKey.
type Logo struct {
	StorageKey string `json:"storage_key"`
	Style      string `json:"style"`
	Primary    bool   `json:"primary"`
}

type DomainCheckList []DomainCheck

func (l DomainCheckList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal domain checks: %w", err)
	}
	return string(b), nil
}

func (l *DomainCheckList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type LogoList []Logo

func (l LogoList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal logos: %w", err)
	}
	return string(b), nil
}

func (l *LogoList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported source type %T for JSON column", src)
	}
}

type Project struct {
	ID           int64           `json:"-" db:"id"`
	UUID         string          `json:"uuid" db:"uuid"`
	OwnerID      string          `json:"owner_id" db:"owner_id"`
	BusinessName string          `json:"business_name" db:"business_name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Industry     *string         `json:"industry,omitempty" db:"industry"`
	Status       ProjectStatus   `json:"status" db:"status"`
	Domains      DomainCheckList `json:"domains" db:"domains"`
	Logos        LogoList        `json:"logos" db:"logos"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

func (p *Project) Completed() bool {
	return p.Status == ProjectStatusCompleted
}
