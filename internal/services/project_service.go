package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/models"
	"projectflow/internal/repositories"
)

const defaultProjectPageSize = 20

var projectStatuses = []string{models.ProjectStatusActive, models.ProjectStatusArchived, models.ProjectStatusCompleted}

type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status" validate:"omitempty,oneof=active archived completed"`
}

type ListProjectsRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Status string `query:"status" validate:"omitempty,oneof=active archived completed"`
	Search string `query:"search"`
}

type ProjectList struct {
	Projects   []models.ProjectSummary `json:"projects"`
	Total      int                     `json:"total"`
	Pagination models.Pagination       `json:"pagination"`
}

// UpdateProjectRequest is a partial update; description may be cleared with null.
type UpdateProjectRequest struct {
	Name        *string                 `json:"name" validate:"omitempty,max=255"`
	Description common.Nullable[string] `json:"description"`
	Status      *string                 `json:"status" validate:"omitempty,oneof=active archived completed"`
}

type ProjectService interface {
	Create(ctx context.Context, id authz.Identity, req CreateProjectRequest) (*models.Project, error)
	List(ctx context.Context, id authz.Identity, req ListProjectsRequest) (*ProjectList, error)
	Get(ctx context.Context, id authz.Identity, projectID uuid.UUID) (*models.ProjectSummary, error)
	Update(ctx context.Context, id authz.Identity, projectID uuid.UUID, req UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, id authz.Identity, projectID uuid.UUID) error
}

type projectService struct {
	repo repositories.ProjectRepository
}

func NewProjectService(repo repositories.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) Create(ctx context.Context, id authz.Identity, req CreateProjectRequest) (*models.Project, error) {
	if err := authz.CanAccessProjects(id); err != nil {
		return nil, err
	}
	tenantID, err := id.Tenant()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := common.ValidateRequiredString(name, "Project name"); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	if err := common.ValidateOptionalString(req.Description, "description", 5000); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if err := common.ValidateOneOf(status, "status", projectStatuses...); err != nil {
		return nil, common.ValidationError(err.Error())
	}

	creator := id.UserID
	project := &models.Project{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        name,
		Description: req.Description,
		Status:      status,
		CreatedBy:   &creator,
	}
	err = s.repo.CreateWithinQuota(ctx, project)
	switch {
	case err == nil:
		return project, nil
	case errors.Is(err, repositories.ErrQuotaExceeded):
		return nil, common.ErrProjectQuotaExceeded
	case errors.Is(err, repositories.ErrNotFound):
		return nil, common.NotFoundError("Tenant")
	default:
		return nil, common.InternalError(fmt.Errorf("create project: %w", err))
	}
}

func (s *projectService) List(ctx context.Context, id authz.Identity, req ListProjectsRequest) (*ProjectList, error) {
	if err := authz.CanAccessProjects(id); err != nil {
		return nil, err
	}
	tenantID, err := id.Tenant()
	if err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := common.ValidateOneOf(req.Status, "status", projectStatuses...); err != nil {
			return nil, common.ValidationError(err.Error())
		}
	}

	page := common.NormalizePage(req.Page, req.Limit, defaultProjectPageSize)
	projects, total, err := s.repo.List(ctx, models.ProjectFilter{
		TenantID: tenantID,
		Status:   req.Status,
		Search:   common.SearchPattern(req.Search),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("list projects: %w", err))
	}
	return &ProjectList{Projects: projects, Total: total, Pagination: models.NewPagination(page.Page, page.Limit, total)}, nil
}

// load fetches a project for an authorization decision; NotFound precedes any
// tenant comparison.
func (s *projectService) load(ctx context.Context, id authz.Identity, projectID uuid.UUID) (*models.Project, error) {
	if err := authz.CanAccessProjects(id); err != nil {
		return nil, err
	}
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Project")
	}
	return project, nil
}

func (s *projectService) Get(ctx context.Context, id authz.Identity, projectID uuid.UUID) (*models.ProjectSummary, error) {
	project, err := s.load(ctx, id, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanReadProject(id, project); err != nil {
		return nil, err
	}
	summary, err := s.repo.GetSummary(ctx, project.TenantID, projectID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Project")
	}
	return summary, nil
}

func (r UpdateProjectRequest) change() (models.ProjectUpdate, error) {
	var change models.ProjectUpdate
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return change, common.ValidationError("Project name cannot be empty")
		}
		change.Name = &name
	}
	if r.Description.Set {
		change.SetDescription = true
		change.Description = r.Description.Ptr()
		if err := common.ValidateOptionalString(change.Description, "description", 5000); err != nil {
			return change, common.ValidationError(err.Error())
		}
	}
	if r.Status != nil {
		if err := common.ValidateOneOf(*r.Status, "status", projectStatuses...); err != nil {
			return change, common.ValidationError(err.Error())
		}
		change.Status = r.Status
	}
	return change, nil
}

func (s *projectService) Update(ctx context.Context, id authz.Identity, projectID uuid.UUID, req UpdateProjectRequest) (*models.Project, error) {
	change, err := req.change()
	if err != nil {
		return nil, err
	}
	project, err := s.load(ctx, id, projectID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyProject(id, project); err != nil {
		return nil, err
	}
	if change.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}

	updated, err := s.repo.Update(ctx, project.TenantID, projectID, change)
	if err != nil {
		return nil, notFoundOrInternal(err, "Project")
	}
	return updated, nil
}

func (s *projectService) Delete(ctx context.Context, id authz.Identity, projectID uuid.UUID) error {
	project, err := s.load(ctx, id, projectID)
	if err != nil {
		return err
	}
	if err := authz.CanModifyProject(id, project); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, project.TenantID, projectID); err != nil {
		return notFoundOrInternal(err, "Project")
	}
	return nil
}
