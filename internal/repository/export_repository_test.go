package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandforge/internal/domain"
)

var exportColumns = []string{
	"id", "uuid", "owner_id", "target_type", "target_id", "export_type",
	"file_path", "file_size", "download_count", "last_downloaded_at",
	"expires_at", "settings", "created_at",
}

func exportRow(id int64, uuid, ownerID string, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(exportColumns).AddRow(
		id, uuid, ownerID, "project", "p-uuid-1", "pdf",
		"exports/"+uuid+".pdf", 2048, 0, nil,
		expiresAt, []byte(`{"template":"default"}`), time.Now(),
	)
}

func TestExportRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	expires := time.Now().AddDate(0, 0, 7)
	mock.ExpectQuery(`INSERT INTO exports`).
		WithArgs("e-uuid-1", "owner-1", "project", "p-uuid-1", domain.ExportTypePDF,
			"exports/e-uuid-1.pdf", int64(2048), expires, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, time.Now()))

	export := &domain.Export{
		UUID:       "e-uuid-1",
		OwnerID:    "owner-1",
		TargetType: "project",
		TargetID:   "p-uuid-1",
		ExportType: domain.ExportTypePDF,
		FilePath:   "exports/e-uuid-1.pdf",
		FileSize:   2048,
		ExpiresAt:  expires,
		Settings:   domain.DefaultExportSettings(),
	}
	require.NoError(t, repo.Create(context.Background(), export))
	assert.Equal(t, int64(3), export.ID)
}

func TestExportRepositoryGetByUUIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectQuery(`SELECT \* FROM exports WHERE uuid = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(exportColumns))

	_, err := repo.GetByUUID(context.Background(), "missing")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestExportRepositoryGetOwnedForeignOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectQuery(`SELECT \* FROM exports WHERE uuid = \$1`).
		WithArgs("e-uuid-1").
		WillReturnRows(exportRow(1, "e-uuid-1", "owner-1", time.Now().Add(time.Hour)))

	_, err := repo.GetOwned(context.Background(), "e-uuid-1", "owner-2")
	var denied *domain.AuthorizationError
	assert.ErrorAs(t, err, &denied)
}

func TestExportRepositoryIncrementDownload(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	now := time.Now()
	mock.ExpectExec(`UPDATE exports\s+SET download_count = download_count \+ 1`).
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	counted, err := repo.IncrementDownload(context.Background(), 1, now)
	require.NoError(t, err)
	assert.True(t, counted)
}

func TestExportRepositoryIncrementDownloadExpiredRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	// The expiry predicate matched no row: expired, or already claimed by
	// the purge.
	now := time.Now()
	mock.ExpectExec(`UPDATE exports\s+SET download_count = download_count \+ 1`).
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	counted, err := repo.IncrementDownload(context.Background(), 1, now)
	require.NoError(t, err)
	assert.False(t, counted)
}

func TestExportRepositoryDeleteOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectQuery(`DELETE FROM exports WHERE uuid = \$1 AND owner_id = \$2 RETURNING file_path`).
		WithArgs("e-uuid-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).AddRow("exports/e-uuid-1.pdf"))

	filePath, err := repo.DeleteOwned(context.Background(), "e-uuid-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "exports/e-uuid-1.pdf", filePath)
}

func TestExportRepositoryDeleteOwnedNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectQuery(`DELETE FROM exports WHERE uuid = \$1 AND owner_id = \$2 RETURNING file_path`).
		WithArgs("e-uuid-1", "owner-2").
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}))

	_, err := repo.DeleteOwned(context.Background(), "e-uuid-1", "owner-2")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestExportRepositoryClaimExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	now := time.Now()
	mock.ExpectQuery(`DELETE FROM exports WHERE expires_at < \$1 RETURNING uuid, file_path`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "file_path"}).
			AddRow("e-uuid-1", "exports/e-uuid-1.pdf").
			AddRow("e-uuid-2", "exports/e-uuid-2.csv"))

	claimed, err := repo.ClaimExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, "e-uuid-1", claimed[0].UUID)
	assert.Equal(t, "exports/e-uuid-2.csv", claimed[1].FilePath)
}

func TestExportRepositoryClaimExpiredNothingToDo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	now := time.Now()
	mock.ExpectQuery(`DELETE FROM exports WHERE expires_at < \$1 RETURNING uuid, file_path`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "file_path"}))

	claimed, err := repo.ClaimExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestExportRepositoryAnalytics(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExportRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(download_count\), 0\)`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(9, 27))
	mock.ExpectQuery(`SELECT export_type, COUNT\(\*\) AS count`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"export_type", "count"}).
			AddRow("pdf", 6).
			AddRow("csv", 3))
	mock.ExpectQuery(`SELECT uuid, export_type, file_size, created_at`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "export_type", "file_size", "created_at"}).
			AddRow("e-uuid-1", "pdf", 2048, time.Now()))

	a, err := repo.Analytics(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.TotalExports)
	assert.Equal(t, int64(27), a.TotalDownloads)
	require.Len(t, a.PopularFormats, 2)
	assert.Equal(t, domain.ExportTypePDF, a.PopularFormats[0].Format)
	require.Len(t, a.RecentActivity, 1)
}
