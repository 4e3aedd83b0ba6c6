package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/models"
	"projectflow/internal/repositories"
)

const defaultTaskPageSize = 50

var (
	taskStatuses   = []string{models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusCompleted}
	taskPriorities = []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}

	errInvalidAssignee = common.ValidationError("Assigned user invalid")
)

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,uuid"`
	DueDate     *string `json:"dueDate"`
}

type ListTasksRequest struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	Status     string `query:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority   string `query:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo string `query:"assignedTo" validate:"omitempty,uuid"`
	Search     string `query:"search"`
}

type TaskList struct {
	Tasks      []models.TaskView `json:"tasks"`
	Total      int               `json:"total"`
	Pagination models.Pagination `json:"pagination"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress completed"`
}

// UpdateTaskRequest changes only the supplied fields. Description, assignee
// and due date may be cleared with an explicit null.
type UpdateTaskRequest struct {
	Title       *string                 `json:"title" validate:"omitempty,max=500"`
	Description common.Nullable[string] `json:"description"`
	Status      *string                 `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    *string                 `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  common.Nullable[string] `json:"assignedTo"`
	DueDate     common.Nullable[string] `json:"dueDate"`
}

type TaskService interface {
	Create(ctx context.Context, id authz.Identity, projectID uuid.UUID, req CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, id authz.Identity, projectID uuid.UUID, req ListTasksRequest) (*TaskList, error)
	UpdateStatus(ctx context.Context, id authz.Identity, taskID uuid.UUID, req UpdateTaskStatusRequest) (*models.Task, error)
	Update(ctx context.Context, id authz.Identity, taskID uuid.UUID, req UpdateTaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id authz.Identity, taskID uuid.UUID) error
}

type taskService struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
	users    repositories.UserRepository
}

func NewTaskService(tasks repositories.TaskRepository, projects repositories.ProjectRepository, users repositories.UserRepository) TaskService {
	return &taskService{tasks: tasks, projects: projects, users: users}
}

// project loads the owning project and checks the caller's tenant against it.
func (s *taskService) project(ctx context.Context, id authz.Identity, projectID uuid.UUID) (*models.Project, error) {
	if err := authz.CanAccessProjects(id); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Project")
	}
	if err := authz.CanReadProject(id, project); err != nil {
		return nil, err
	}
	return project, nil
}

// checkAssignee verifies the assignee is a member of tenantID.
func (s *taskService) checkAssignee(ctx context.Context, tenantID uuid.UUID, raw string) (*uuid.UUID, error) {
	assignee, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errInvalidAssignee
	}
	ok, err := s.users.ExistsInTenant(ctx, tenantID, assignee)
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("check assignee: %w", err))
	}
	if !ok {
		return nil, errInvalidAssignee
	}
	return &assignee, nil
}

func parseDueDate(raw string) (*time.Time, error) {
	due, err := common.ParseDate(raw, "dueDate")
	if err != nil {
		return nil, common.ValidationError(err.Error())
	}
	return &due, nil
}

func (s *taskService) Create(ctx context.Context, id authz.Identity, projectID uuid.UUID, req CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if err := common.ValidateRequiredString(title, "Task title"); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	if err := common.ValidateOptionalString(req.Description, "description", 5000); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if err := common.ValidateOneOf(priority, "priority", taskPriorities...); err != nil {
		return nil, common.ValidationError(err.Error())
	}

	project, err := s.project(ctx, id, projectID)
	if err != nil {
		return nil, err
	}

	creator := id.UserID
	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		TenantID:    project.TenantID,
		Title:       title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		CreatedBy:   &creator,
	}
	if req.AssignedTo != nil && strings.TrimSpace(*req.AssignedTo) != "" {
		if task.AssignedTo, err = s.checkAssignee(ctx, project.TenantID, *req.AssignedTo); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		if task.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrInvalidReference) {
			return nil, errInvalidAssignee
		}
		return nil, common.InternalError(fmt.Errorf("create task: %w", err))
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, id authz.Identity, projectID uuid.UUID, req ListTasksRequest) (*TaskList, error) {
	project, err := s.project(ctx, id, projectID)
	if err != nil {
		return nil, err
	}

	filter := models.TaskFilter{
		TenantID:  project.TenantID,
		ProjectID: project.ID,
		Search:    common.SearchPattern(req.Search),
	}
	if req.Status != "" {
		if err := common.ValidateOneOf(req.Status, "status", taskStatuses...); err != nil {
			return nil, common.ValidationError(err.Error())
		}
		filter.Status = req.Status
	}
	if req.Priority != "" {
		if err := common.ValidateOneOf(req.Priority, "priority", taskPriorities...); err != nil {
			return nil, common.ValidationError(err.Error())
		}
		filter.Priority = req.Priority
	}
	if req.AssignedTo != "" {
		assignee, err := common.ValidateUUID(req.AssignedTo, "assignedTo")
		if err != nil {
			return nil, common.ValidationError(err.Error())
		}
		filter.AssignedTo = &assignee
	}

	page := common.NormalizePage(req.Page, req.Limit, defaultTaskPageSize)
	filter.Limit, filter.Offset = page.Limit, page.Offset
	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("list tasks: %w", err))
	}
	return &TaskList{Tasks: tasks, Total: total, Pagination: models.NewPagination(page.Page, page.Limit, total)}, nil
}

// loadTask fetches a task and its project for a mutation decision.
func (s *taskService) loadTask(ctx context.Context, id authz.Identity, taskID uuid.UUID) (*models.Task, *models.Project, error) {
	if err := authz.CanAccessProjects(id); err != nil {
		return nil, nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, notFoundOrInternal(err, "Task")
	}
	if err := authz.RequireSameTenant(id, task.TenantID); err != nil {
		return nil, nil, err
	}
	project, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, notFoundOrInternal(err, "Project")
	}
	return task, project, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, id authz.Identity, taskID uuid.UUID, req UpdateTaskStatusRequest) (*models.Task, error) {
	if err := common.ValidateOneOf(req.Status, "status", taskStatuses...); err != nil {
		return nil, common.ValidationError(err.Error())
	}
	task, project, err := s.loadTask(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanUpdateTaskStatus(id, task, project); err != nil {
		return nil, err
	}

	status := req.Status
	updated, err := s.tasks.Update(ctx, task.TenantID, taskID, models.TaskUpdate{Status: &status})
	if err != nil {
		return nil, notFoundOrInternal(err, "Task")
	}
	return updated, nil
}

func (s *taskService) change(ctx context.Context, tenantID uuid.UUID, req UpdateTaskRequest) (models.TaskUpdate, error) {
	var change models.TaskUpdate
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return change, common.ValidationError("Task title cannot be empty")
		}
		change.Title = &title
	}
	if req.Description.Set {
		change.SetDescription = true
		change.Description = req.Description.Ptr()
		if err := common.ValidateOptionalString(change.Description, "description", 5000); err != nil {
			return change, common.ValidationError(err.Error())
		}
	}
	if req.Status != nil {
		if err := common.ValidateOneOf(*req.Status, "status", taskStatuses...); err != nil {
			return change, common.ValidationError(err.Error())
		}
		change.Status = req.Status
	}
	if req.Priority != nil {
		if err := common.ValidateOneOf(*req.Priority, "priority", taskPriorities...); err != nil {
			return change, common.ValidationError(err.Error())
		}
		change.Priority = req.Priority
	}
	if req.AssignedTo.Set {
		change.SetAssignedTo = true
		if req.AssignedTo.Valid && strings.TrimSpace(req.AssignedTo.Value) != "" {
			assignee, err := s.checkAssignee(ctx, tenantID, req.AssignedTo.Value)
			if err != nil {
				return change, err
			}
			change.AssignedTo = assignee
		}
	}
	if req.DueDate.Set {
		change.SetDueDate = true
		if req.DueDate.Valid && strings.TrimSpace(req.DueDate.Value) != "" {
			due, err := parseDueDate(req.DueDate.Value)
			if err != nil {
				return change, err
			}
			change.DueDate = due
		}
	}
	return change, nil
}

// Update re-validates a new assignee against the task's tenant.
func (s *taskService) Update(ctx context.Context, id authz.Identity, taskID uuid.UUID, req UpdateTaskRequest) (*models.Task, error) {
	task, project, err := s.loadTask(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyTask(id, task, project); err != nil {
		return nil, err
	}
	change, err := s.change(ctx, task.TenantID, req)
	if err != nil {
		return nil, err
	}
	if change.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}

	updated, err := s.tasks.Update(ctx, task.TenantID, taskID, change)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidReference) {
			return nil, errInvalidAssignee
		}
		return nil, notFoundOrInternal(err, "Task")
	}
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, id authz.Identity, taskID uuid.UUID) error {
	task, project, err := s.loadTask(ctx, id, taskID)
	if err != nil {
		return err
	}
	if err := authz.CanModifyTask(id, task, project); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, task.TenantID, taskID); err != nil {
		return notFoundOrInternal(err, "Task")
	}
	return nil
}
