package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareSettingsDefaultEnabled(t *testing.T) {
	var s ShareSettings
	assert.True(t, s.TitleShown())
	assert.True(t, s.DescriptionShown())
	assert.True(t, s.LogosShown())
	assert.True(t, s.DomainStatusShown())
}

func TestShareSettingsMerge(t *testing.T) {
	off, on := false, true
	base := ShareSettings{ShowTitle: &off, ShowLogos: &off}

	merged := base.Merge(ShareSettings{ShowTitle: &on, ShowDomainStatus: &off})

	assert.True(t, merged.TitleShown())
	assert.False(t, merged.LogosShown(), "fields absent from the update keep their value")
	assert.False(t, merged.DomainStatusShown())
	assert.True(t, merged.DescriptionShown())
}

func TestShareSettingsScan(t *testing.T) {
	var s ShareSettings
	require.NoError(t, s.Scan([]byte(`{"show_title": false}`)))
	assert.False(t, s.TitleShown())
	assert.True(t, s.LogosShown())
}

func TestShareExpired(t *testing.T) {
	now := time.Now()

	var share Share
	assert.False(t, share.Expired(now), "no expiry means never expired")

	future := now.Add(time.Hour)
	share.ExpiresAt = &future
	assert.False(t, share.Expired(now))

	past := now.Add(-time.Minute)
	share.ExpiresAt = &past
	assert.True(t, share.Expired(now))
}

func TestShareTypeValid(t *testing.T) {
	assert.True(t, ShareTypePublic.Valid())
	assert.True(t, ShareTypePasswordProtected.Valid())
	assert.False(t, ShareType("private").Valid())
}

func TestShareFilterNormalize(t *testing.T) {
	f := ShareFilter{Page: -3, PerPage: 400}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PerPage)
	assert.Equal(t, 0, f.Offset())

	f = ShareFilter{Page: 3, PerPage: 10}.Normalize()
	assert.Equal(t, 20, f.Offset())
}

func TestExportTypeContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ExportTypePDF.ContentType())
	assert.Equal(t, "text/csv", ExportTypeCSV.ContentType())
	assert.Equal(t, "application/json", ExportTypeJSON.ContentType())
	assert.Equal(t, ".csv", ExportTypeCSV.Extension())
	assert.False(t, ExportType("xml").Valid())
}

func TestExportExpired(t *testing.T) {
	now := time.Now()
	e := Export{ExpiresAt: now.Add(time.Second)}
	assert.False(t, e.Expired(now))
	e.ExpiresAt = now.Add(-time.Second)
	assert.True(t, e.Expired(now))
}
