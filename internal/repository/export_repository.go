package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"brandforge/internal/domain"
)

type ExportRepository struct {
	db *sqlx.DB
}

func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) Create(ctx context.Context, export *domain.Export) error {
	query := `
        INSERT INTO exports (
            uuid, owner_id, target_type, target_id, export_type,
            file_path, file_size, expires_at, settings
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9
        ) RETURNING id, created_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		export.UUID,
		export.OwnerID,
		export.TargetType,
		export.TargetID,
		export.ExportType,
		export.FilePath,
		export.FileSize,
		export.ExpiresAt,
		export.Settings,
	).Scan(&export.ID, &export.CreatedAt)
}

func (r *ExportRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Export, error) {
	var export domain.Export
	query := `SELECT * FROM exports WHERE uuid = $1`
	if err := r.db.GetContext(ctx, &export, query, uuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "export"}
		}
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	return &export, nil
}

func (r *ExportRepository) GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Export, error) {
	export, err := r.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if export.OwnerID != ownerID {
		return nil, &domain.AuthorizationError{Reason: "export belongs to another user"}
	}
	return export, nil
}

// IncrementDownload bumps the download counter in place, guarded by the
// expiry predicate. It reports false when no row qualified, which means the
// export is expired or its row was already claimed by the purge; callers
// must not serve the artifact in that case.
func (r *ExportRepository) IncrementDownload(ctx context.Context, id int64, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE exports
        SET download_count = download_count + 1, last_downloaded_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND expires_at > $2`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("failed to increment download count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteOwned removes the record and returns its artifact path for storage
// cleanup.
func (r *ExportRepository) DeleteOwned(ctx context.Context, uuid, ownerID string) (string, error) {
	var filePath string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM exports WHERE uuid = $1 AND owner_id = $2 RETURNING file_path`,
		uuid, ownerID,
	).Scan(&filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &domain.NotFoundError{Resource: "export"}
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete export: %w", err)
	}
	return filePath, nil
}

// ClaimExpired atomically removes all expired rows and returns them so the
// caller can delete the artifacts. Claiming and deleting in one statement
// means a concurrently running download can never increment a claimed row.
func (r *ExportRepository) ClaimExpired(ctx context.Context, now time.Time) ([]domain.ExpiredArtifact, error) {
	var claimed []domain.ExpiredArtifact
	query := `DELETE FROM exports WHERE expires_at < $1 RETURNING uuid, file_path`
	if err := r.db.SelectContext(ctx, &claimed, query, now); err != nil {
		return nil, fmt.Errorf("failed to claim expired exports: %w", err)
	}
	return claimed, nil
}

func (r *ExportRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.ExportFilter) (*domain.ExportList, error) {
	filter = filter.Normalize()

	var exportType interface{}
	if filter.ExportType != nil {
		exportType = string(*filter.ExportType)
	}

	var total int64
	countQuery := `
        SELECT COUNT(*) FROM exports
        WHERE owner_id = $1 AND ($2::text IS NULL OR export_type = $2)`
	if err := r.db.GetContext(ctx, &total, countQuery, ownerID, exportType); err != nil {
		return nil, fmt.Errorf("failed to count exports: %w", err)
	}

	var exports []domain.Export
	query := `
        SELECT * FROM exports
        WHERE owner_id = $1 AND ($2::text IS NULL OR export_type = $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &exports, query,
		ownerID, exportType, filter.PerPage, filter.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	return &domain.ExportList{
		Items:   exports,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (r *ExportRepository) Analytics(ctx context.Context, ownerID string) (*domain.ExportAnalytics, error) {
	var a domain.ExportAnalytics

	if err := r.db.QueryRowxContext(ctx, `
        SELECT COUNT(*), COALESCE(SUM(download_count), 0)
        FROM exports WHERE owner_id = $1`, ownerID,
	).Scan(&a.TotalExports, &a.TotalDownloads); err != nil {
		return nil, fmt.Errorf("failed to aggregate export totals: %w", err)
	}

	if err := r.db.SelectContext(ctx, &a.PopularFormats, `
        SELECT export_type, COUNT(*) AS count
        FROM exports
        WHERE owner_id = $1
        GROUP BY export_type
        ORDER BY count DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("failed to aggregate export formats: %w", err)
	}

	if err := r.db.SelectContext(ctx, &a.RecentActivity, `
        SELECT uuid, export_type, file_size, created_at
        FROM exports
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT 5`, ownerID); err != nil {
		return nil, fmt.Errorf("failed to load recent exports: %w", err)
	}

	return &a, nil
}
