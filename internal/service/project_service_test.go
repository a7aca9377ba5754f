package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandforge/internal/domain"
)

type fakeProjectRepo struct {
	mu       sync.Mutex
	nextID   int64
	projects map[string]*domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*domain.Project)}
}

func (r *fakeProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.projects[p.UUID] = &clone
	return nil
}

func (r *fakeProjectRepo) GetByUUID(ctx context.Context, uuid string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[uuid]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "project"}
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProjectRepo) GetOwned(ctx context.Context, uuid, ownerID string) (*domain.Project, error) {
	p, err := r.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, &domain.AuthorizationError{}
	}
	return p, nil
}

func (r *fakeProjectRepo) ListByOwner(ctx context.Context, ownerID string, page, perPage int) ([]domain.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.UUID]; !ok {
		return &domain.NotFoundError{Resource: "project"}
	}
	clone := *p
	r.projects[p.UUID] = &clone
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, uuid, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[uuid]
	if !ok || p.OwnerID != ownerID {
		return &domain.NotFoundError{Resource: "project"}
	}
	delete(r.projects, uuid)
	return nil
}

func newTestProjectService() (*ProjectService, *fakeProjectRepo) {
	repo := newFakeProjectRepo()
	return NewProjectService(repo, zerolog.Nop()), repo
}

func TestCreateProject(t *testing.T) {
	svc, _ := newTestProjectService()

	project, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{
		BusinessName: "TechFlow Solutions",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, project.UUID)
	assert.Equal(t, domain.ProjectStatusDraft, project.Status)
	assert.Equal(t, "TechFlow Solutions", project.BusinessName)
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _ := newTestProjectService()

	_, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{})
	assert.Contains(t, fieldNames(t, err), "business_name")

	long := strings.Repeat("x", maxBusinessNameLen+1)
	_, err = svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{BusinessName: long})
	assert.Contains(t, fieldNames(t, err), "business_name")
}

func TestUpdateProjectStatusTransitions(t *testing.T) {
	tests := []struct {
		from domain.ProjectStatus
		to   domain.ProjectStatus
		ok   bool
	}{
		{domain.ProjectStatusDraft, domain.ProjectStatusGenerating, true},
		{domain.ProjectStatusGenerating, domain.ProjectStatusCompleted, true},
		{domain.ProjectStatusGenerating, domain.ProjectStatusFailed, true},
		{domain.ProjectStatusFailed, domain.ProjectStatusGenerating, true},
		{domain.ProjectStatusDraft, domain.ProjectStatusCompleted, false},
		{domain.ProjectStatusCompleted, domain.ProjectStatusDraft, false},
		{domain.ProjectStatusCompleted, domain.ProjectStatusGenerating, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			svc, repo := newTestProjectService()
			project, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{
				BusinessName: "Acme",
			})
			require.NoError(t, err)

			repo.mu.Lock()
			repo.projects[project.UUID].Status = tt.from
			repo.mu.Unlock()

			to := tt.to
			updated, err := svc.UpdateProject(context.Background(), "owner-1", project.UUID,
				UpdateProjectRequest{Status: &to})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
			} else {
				assert.Contains(t, fieldNames(t, err), "status")
			}
		})
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	svc, _ := newTestProjectService()
	desc := "Original description"
	project, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{
		BusinessName: "Acme",
		Description:  &desc,
	})
	require.NoError(t, err)

	industry := "Technology"
	updated, err := svc.UpdateProject(context.Background(), "owner-1", project.UUID,
		UpdateProjectRequest{Industry: &industry})
	require.NoError(t, err)

	require.NotNil(t, updated.Description)
	assert.Equal(t, "Original description", *updated.Description)
	require.NotNil(t, updated.Industry)
	assert.Equal(t, "Technology", *updated.Industry)
	assert.Equal(t, "Acme", updated.BusinessName)
}

func TestDeleteProjectForeignOwner(t *testing.T) {
	svc, _ := newTestProjectService()
	project, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{
		BusinessName: "Acme",
	})
	require.NoError(t, err)

	err = svc.DeleteProject(context.Background(), "owner-2", project.UUID)
	assert.Error(t, err)

	_, err = svc.GetProject(context.Background(), "owner-1", project.UUID)
	assert.NoError(t, err)
}

func TestLoadTarget(t *testing.T) {
	svc, _ := newTestProjectService()
	project, err := svc.CreateProject(context.Background(), "owner-1", CreateProjectRequest{
		BusinessName: "Acme",
	})
	require.NoError(t, err)

	target, err := svc.LoadTarget(context.Background(), project.UUID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", target.TargetOwner())
	assert.Equal(t, "Acme", target.TargetName())
	assert.False(t, target.TargetCompleted())
}
