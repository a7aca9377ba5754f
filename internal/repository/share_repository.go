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

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, share *domain.Share) error {
	query := `
        INSERT INTO shares (
            uuid, owner_id, target_type, target_id, share_type,
            password_hash, title, description, settings, is_active, expires_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        ) RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		share.UUID,
		share.OwnerID,
		share.TargetType,
		share.TargetID,
		share.ShareType,
		share.PasswordHash,
		share.Title,
		share.Description,
		share.Settings,
		share.IsActive,
		share.ExpiresAt,
	).Scan(&share.ID, &share.CreatedAt, &share.UpdatedAt)
}

// GetActiveByUUID returns the share only if it is still active. Inactive
// shares are indistinguishable from absent ones to public callers.
func (r *ShareRepository) GetActiveByUUID(ctx context.Context, uuid string) (*domain.Share, error) {
	var share domain.Share
	query := `SELECT * FROM shares WHERE uuid = $1 AND is_active = TRUE`
	if err := r.db.GetContext(ctx, &share, query, uuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "share"}
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return &share, nil
}

// GetOwned returns the share (active or not) only if ownerID owns it.
func (r *ShareRepository) GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Share, error) {
	var share domain.Share
	query := `SELECT * FROM shares WHERE uuid = $1`
	if err := r.db.GetContext(ctx, &share, query, uuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "share"}
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	if share.OwnerID != ownerID {
		return nil, &domain.AuthorizationError{Reason: "share belongs to another user"}
	}
	return &share, nil
}

// Update persists the mutable owner fields: title, description, settings.
func (r *ShareRepository) Update(ctx context.Context, share *domain.Share) error {
	query := `
        UPDATE shares
        SET title = $1, description = $2, settings = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query,
		share.Title, share.Description, share.Settings, share.ID)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "share"}
	}

	return nil
}

// Deactivate soft-deletes the share. The row and its access events persist.
func (r *ShareRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shares SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate share: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "share"}
	}

	return nil
}

// RecordAccess appends one access event and bumps the view counter. The
// counter update is a single in-place increment, so concurrent calls for the
// same share never lose updates.
func (r *ShareRepository) RecordAccess(ctx context.Context, access *domain.ShareAccess) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
        INSERT INTO share_accesses (share_id, ip_address, user_agent, referrer)
        VALUES ($1, $2, $3, $4)
        RETURNING id, accessed_at`,
		access.ShareID, access.IPAddress, access.UserAgent, access.Referrer,
	).Scan(&access.ID, &access.AccessedAt); err != nil {
		return fmt.Errorf("failed to insert access event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE shares
        SET view_count = view_count + 1, last_viewed_at = CURRENT_TIMESTAMP
        WHERE id = $1`,
		access.ShareID,
	); err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit access record: %w", err)
	}
	return nil
}

func (r *ShareRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.ShareFilter) (*domain.ShareList, error) {
	filter = filter.Normalize()

	var shareType interface{}
	if filter.ShareType != nil {
		shareType = string(*filter.ShareType)
	}
	search := filter.Search

	var total int64
	countQuery := `
        SELECT COUNT(*) FROM shares
        WHERE owner_id = $1
        AND ($2::text IS NULL OR share_type = $2)
        AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')`
	if err := r.db.GetContext(ctx, &total, countQuery, ownerID, shareType, search); err != nil {
		return nil, fmt.Errorf("failed to count shares: %w", err)
	}

	var shares []domain.Share
	query := `
        SELECT * FROM shares
        WHERE owner_id = $1
        AND ($2::text IS NULL OR share_type = $2)
        AND ($3 = '' OR title ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
        ORDER BY created_at DESC
        LIMIT $4 OFFSET $5`
	if err := r.db.SelectContext(ctx, &shares, query,
		ownerID, shareType, search, filter.PerPage, filter.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	return &domain.ShareList{
		Items:   shares,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

// Analytics aggregates the share's access events.
func (r *ShareRepository) Analytics(ctx context.Context, shareID int64, now time.Time) (*domain.ShareAnalytics, error) {
	var a domain.ShareAnalytics
	query := `
        SELECT
            COUNT(*) AS total_views,
            COUNT(DISTINCT ip_address) AS unique_visitors,
            COUNT(*) FILTER (WHERE accessed_at >= $2) AS recent_views,
            COUNT(*) FILTER (WHERE accessed_at >= $3) AS today_views,
            MAX(accessed_at) AS last_viewed_at
        FROM share_accesses
        WHERE share_id = $1`

	weekAgo := now.AddDate(0, 0, -7)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	row := r.db.QueryRowxContext(ctx, query, shareID, weekAgo, startOfDay)
	if err := row.Scan(&a.TotalViews, &a.UniqueVisitors, &a.RecentViews, &a.TodayViews, &a.LastViewedAt); err != nil {
		return nil, fmt.Errorf("failed to aggregate share analytics: %w", err)
	}

	return &a, nil
}
