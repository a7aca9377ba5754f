package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"brandforge/internal/domain"
)

type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	query := `
        INSERT INTO projects (
            uuid, owner_id, business_name, description, industry, status, domains, logos
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        ) RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(
		ctx,
		query,
		p.UUID,
		p.OwnerID,
		p.BusinessName,
		p.Description,
		p.Industry,
		p.Status,
		p.Domains,
		p.Logos,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Project, error) {
	var p domain.Project
	query := `SELECT * FROM projects WHERE uuid = $1`
	if err := r.db.GetContext(ctx, &p, query, uuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "project"}
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// GetOwned returns the project only if ownerID owns it.
func (r *ProjectRepository) GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Project, error) {
	p, err := r.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, &domain.AuthorizationError{Reason: "project belongs to another user"}
	}
	return p, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string, page, perPage int) ([]domain.Project, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []domain.Project
	query := `
        SELECT * FROM projects
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &projects, query, ownerID, perPage, (page-1)*perPage); err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	query := `
        UPDATE projects
        SET business_name = $1, description = $2, industry = $3, status = $4,
            domains = $5, logos = $6, updated_at = CURRENT_TIMESTAMP
        WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		p.BusinessName, p.Description, p.Industry, p.Status, p.Domains, p.Logos, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "project"}
	}

	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, uuid, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE uuid = $1 AND owner_id = $2`, uuid, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Resource: "project"}
	}

	return nil
}
