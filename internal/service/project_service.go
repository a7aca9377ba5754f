package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"brandforge/internal/domain"
	"brandforge/internal/secure"
)

const maxBusinessNameLen = 120

// ProjectRepo is the persistence surface the project service needs.
type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByUUID(ctx context.Context, uuid string) (*domain.Project, error)
	GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string, page, perPage int) ([]domain.Project, int64, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, uuid, ownerID string) error
}

// ProjectService manages naming projects, the concrete target entities
// behind shares and exports.
type ProjectService struct {
	projectRepo ProjectRepo
	log         zerolog.Logger
}

func NewProjectService(projectRepo ProjectRepo, log zerolog.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		log:         log.With().Str("component", "project_service").Logger(),
	}
}

// LoadTarget is the resolver hook for the "project" target type.
func (s *ProjectService) LoadTarget(ctx context.Context, id string) (domain.Target, error) {
	return s.projectRepo.GetByUUID(ctx, id)
}

type CreateProjectRequest struct {
	BusinessName string  `json:"business_name"`
	Description  *string `json:"description,omitempty"`
	Industry     *string `json:"industry,omitempty"`
}

func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req CreateProjectRequest) (*domain.Project, error) {
	verr := &domain.ValidationError{}
	if req.BusinessName == "" {
		verr.Add("business_name", "business name is required")
	} else if len(req.BusinessName) > maxBusinessNameLen {
		verr.Add("business_name", fmt.Sprintf("must be at most %d characters", maxBusinessNameLen))
	}
	if !verr.Empty() {
		return nil, verr
	}

	project := &domain.Project{
		UUID:         secure.NewOpaqueID(),
		OwnerID:      ownerID,
		BusinessName: sanitizeText(req.BusinessName),
		Description:  sanitizeOptional(req.Description),
		Industry:     sanitizeOptional(req.Industry),
		Status:       domain.ProjectStatusDraft,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.Info().Str("project", project.UUID).Str("owner", ownerID).Msg("project created")
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, ownerID, uuid string) (*domain.Project, error) {
	return s.projectRepo.GetOwned(ctx, uuid, ownerID)
}

func (s *ProjectService) ListProjects(ctx context.Context, ownerID string, page, perPage int) ([]domain.Project, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.projectRepo.ListByOwner(ctx, ownerID, page, perPage)
}

type UpdateProjectRequest struct {
	BusinessName *string                `json:"business_name,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Industry     *string                `json:"industry,omitempty"`
	Status       *domain.ProjectStatus  `json:"status,omitempty"`
	Domains      domain.DomainCheckList `json:"domains,omitempty"`
	Logos        domain.LogoList        `json:"logos,omitempty"`
}

var statusTransitions = map[domain.ProjectStatus][]domain.ProjectStatus{
	domain.ProjectStatusDraft:      {domain.ProjectStatusGenerating},
	domain.ProjectStatusGenerating: {domain.ProjectStatusCompleted, domain.ProjectStatusFailed},
	domain.ProjectStatusFailed:     {domain.ProjectStatusGenerating},
}

func validTransition(from, to domain.ProjectStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *ProjectService) UpdateProject(ctx context.Context, ownerID, uuid string, req UpdateProjectRequest) (*domain.Project, error) {
	project, err := s.projectRepo.GetOwned(ctx, uuid, ownerID)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}

	if req.BusinessName != nil {
		if *req.BusinessName == "" {
			verr.Add("business_name", "business name cannot be empty")
		} else if len(*req.BusinessName) > maxBusinessNameLen {
			verr.Add("business_name", fmt.Sprintf("must be at most %d characters", maxBusinessNameLen))
		} else {
			project.BusinessName = sanitizeText(*req.BusinessName)
		}
	}
	if req.Status != nil && *req.Status != project.Status {
		if !validTransition(project.Status, *req.Status) {
			verr.Add("status", fmt.Sprintf("cannot move from %s to %s", project.Status, *req.Status))
		} else {
			project.Status = *req.Status
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	if req.Description != nil {
		project.Description = sanitizeOptional(req.Description)
	}
	if req.Industry != nil {
		project.Industry = sanitizeOptional(req.Industry)
	}
	if req.Domains != nil {
		project.Domains = req.Domains
	}
	if req.Logos != nil {
		project.Logos = req.Logos
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, ownerID, uuid string) error {
	return s.projectRepo.Delete(ctx, uuid, ownerID)
}
