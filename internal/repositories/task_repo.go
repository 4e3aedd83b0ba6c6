package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"projectflow/internal/models"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, int, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, tenantID, id uuid.UUID, change models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type taskRepo struct {
	db DB
}

func NewTaskRepo(db DB) TaskRepository {
	return &taskRepo{db: db}
}

const taskColumns = "id, project_id, tenant_id, title, description, status, priority, assigned_to, created_by, due_date, created_at, updated_at"

var taskViewColumns = []string{
	"t.id", "t.project_id", "t.tenant_id", "t.title", "t.description", "t.status", "t.priority",
	"t.assigned_to", "t.created_by", "t.due_date", "t.created_at", "t.updated_at",
	"u.full_name", "u.email",
}

func scanTask(row pgx.Row, t *models.Task, extra ...any) error {
	dest := []any{&t.ID, &t.ProjectID, &t.TenantID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssignedTo, &t.CreatedBy, &t.DueDate, &t.CreatedAt, &t.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

// GetByID loads a task regardless of tenant; callers compare tenants afterwards.
func (r *taskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`
	if err := scanTask(r.db.QueryRow(ctx, query, id), task); err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

func taskFilters(b sq.SelectBuilder, f models.TaskFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"t.tenant_id": f.TenantID}).
		Where(sq.Eq{"t.project_id": f.ProjectID})
	if f.Status != "" {
		b = b.Where(sq.Eq{"t.status": f.Status})
	}
	if f.Priority != "" {
		b = b.Where(sq.Eq{"t.priority": f.Priority})
	}
	if f.AssignedTo != nil {
		b = b.Where(sq.Eq{"t.assigned_to": *f.AssignedTo})
	}
	if f.Search != "" {
		b = b.Where(sq.ILike{"t.title": f.Search})
	}
	return b
}

func (r *taskRepo) List(ctx context.Context, f models.TaskFilter) ([]models.TaskView, int, error) {
	total, err := count(ctx, r.db, taskFilters(psql.Select("COUNT(*)").From("tasks t"), f))
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	b := taskFilters(psql.Select(taskViewColumns...).From("tasks t").LeftJoin("users u ON u.id = t.assigned_to"), f).
		OrderBy("t.created_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]models.TaskView, 0)
	for rows.Next() {
		var (
			v             models.TaskView
			assigneeName  *string
			assigneeEmail *string
		)
		if err := scanTask(rows, &v.Task, &assigneeName, &assigneeEmail); err != nil {
			return nil, 0, err
		}
		if v.AssignedTo != nil && assigneeName != nil {
			v.Assignee = &models.TaskAssignee{ID: *v.AssignedTo, FullName: *assigneeName}
			if assigneeEmail != nil {
				v.Assignee.Email = *assigneeEmail
			}
		}
		tasks = append(tasks, v)
	}
	return tasks, total, rows.Err()
}

// Create inserts a task. The composite foreign key on (project_id, tenant_id)
// rejects a tenant that differs from the project's.
func (r *taskRepo) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, tenant_id, title, description, status, priority, assigned_to, created_by, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, task.ID, task.ProjectID, task.TenantID, task.Title, task.Description,
		task.Status, task.Priority, task.AssignedTo, task.CreatedBy, task.DueDate).Scan(&task.CreatedAt, &task.UpdatedAt)
	return translateError(err)
}

func (r *taskRepo) Update(ctx context.Context, tenantID, id uuid.UUID, change models.TaskUpdate) (*models.Task, error) {
	b := psql.Update("tasks")
	if change.Title != nil {
		b = b.Set("title", *change.Title)
	}
	if change.SetDescription {
		b = b.Set("description", change.Description)
	}
	if change.Status != nil {
		b = b.Set("status", *change.Status)
	}
	if change.Priority != nil {
		b = b.Set("priority", *change.Priority)
	}
	if change.SetAssignedTo {
		b = b.Set("assigned_to", change.AssignedTo)
	}
	if change.SetDueDate {
		b = b.Set("due_date", change.DueDate)
	}
	b = b.Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + taskColumns)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	task := &models.Task{}
	if err := scanTask(r.db.QueryRow(ctx, query, args...), task); err != nil {
		return nil, translateError(err)
	}
	return task, nil
}

func (r *taskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
