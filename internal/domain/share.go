package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ShareType string

const (
	ShareTypePublic            ShareType = "public"
	ShareTypePasswordProtected ShareType = "password_protected"
)

func (t ShareType) Valid() bool {
	return t == ShareTypePublic || t == ShareTypePasswordProtected
}

// ShareSettings controls what the public share page displays. A nil field
// means "not set"; every toggle defaults to enabled.
type ShareSettings struct {
	ShowTitle        *bool `json:"show_title,omitempty"`
	ShowDescription  *bool `json:"show_description,omitempty"`
	ShowLogos        *bool `json:"show_logos,omitempty"`
	ShowDomainStatus *bool `json:"show_domain_status,omitempty"`
}

func settingEnabled(v *bool) bool {
	return v == nil || *v
}

func (s ShareSettings) TitleShown() bool        { return settingEnabled(s.ShowTitle) }
func (s ShareSettings) DescriptionShown() bool  { return settingEnabled(s.ShowDescription) }
func (s ShareSettings) LogosShown() bool        { return settingEnabled(s.ShowLogos) }
func (s ShareSettings) DomainStatusShown() bool { return settingEnabled(s.ShowDomainStatus) }

// Merge overlays the non-nil fields of other onto s.
func (s ShareSettings) Merge(other ShareSettings) ShareSettings {
	if other.ShowTitle != nil {
		s.ShowTitle = other.ShowTitle
	}
	if other.ShowDescription != nil {
		s.ShowDescription = other.ShowDescription
	}
	if other.ShowLogos != nil {
		s.ShowLogos = other.ShowLogos
	}
	if other.ShowDomainStatus != nil {
		s.ShowDomainStatus = other.ShowDomainStatus
	}
	return s
}

func (s ShareSettings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal share settings: %w", err)
	}
	return string(b), nil
}

func (s *ShareSettings) Scan(src interface{}) error {
	return scanJSON(src, s)
}

type Share struct {
	ID           int64         `json:"-" db:"id"`
	UUID         string        `json:"uuid" db:"uuid"`
	OwnerID      string        `json:"owner_id" db:"owner_id"`
	TargetType   string        `json:"shareable_type" db:"target_type"`
	TargetID     string        `json:"shareable_id" db:"target_id"`
	ShareType    ShareType     `json:"share_type" db:"share_type"`
	PasswordHash *string       `json:"-" db:"password_hash"`
	Title        *string       `json:"title,omitempty" db:"title"`
	Description  *string       `json:"description,omitempty" db:"description"`
	Settings     ShareSettings `json:"settings" db:"settings"`
	IsActive     bool          `json:"is_active" db:"is_active"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty" db:"expires_at"`
	ViewCount    int64         `json:"view_count" db:"view_count"`
	LastViewedAt *time.Time    `json:"last_viewed_at,omitempty" db:"last_viewed_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Expired reports whether the share's expiry has passed. Expiry is derived
// state, never stored.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// ShareAccess is one recorded view of a share. Rows are immutable once
// written and retained for analytics.
type ShareAccess struct {
	ID         int64     `json:"-" db:"id"`
	ShareID    int64     `json:"-" db:"share_id"`
	IPAddress  *string   `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string   `json:"user_agent,omitempty" db:"user_agent"`
	Referrer   *string   `json:"referrer,omitempty" db:"referrer"`
	AccessedAt time.Time `json:"accessed_at" db:"accessed_at"`
}

type ShareAnalytics struct {
	TotalViews     int64      `json:"total_views"`
	UniqueVisitors int64      `json:"unique_visitors"`
	RecentViews    int64      `json:"recent_views"`
	TodayViews     int64      `json:"today_views"`
	LastViewedAt   *time.Time `json:"last_viewed_at,omitempty"`
}

// ShareFilter narrows GetUserShares listings.
type ShareFilter struct {
	Page      int
	PerPage   int
	ShareType *ShareType
	Search    string
}

func (f ShareFilter) Normalize() ShareFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return f
}

func (f ShareFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

type ShareList struct {
	Items   []Share `json:"items"`
	Total   int64   `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
}
