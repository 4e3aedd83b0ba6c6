package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"projectflow/internal/models"
)

type ProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetSummary(ctx context.Context, tenantID, id uuid.UUID) (*models.ProjectSummary, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, int, error)
	CreateWithinQuota(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, tenantID, id uuid.UUID, change models.ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type projectRepo struct {
	db DB
}

func NewProjectRepo(db DB) ProjectRepository {
	return &projectRepo{db: db}
}

const projectColumns = "id, tenant_id, name, description, status, created_by, created_at, updated_at"

var projectSummaryColumns = []string{
	"p.id", "p.tenant_id", "p.name", "p.description", "p.status", "p.created_by", "u.full_name",
	"(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count",
	"(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed') AS completed_task_count",
	"p.created_at", "p.updated_at",
}

func scanProject(row pgx.Row, p *models.Project) error {
	return row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
}

func scanProjectSummary(row pgx.Row, s *models.ProjectSummary) error {
	var (
		createdBy   *uuid.UUID
		creatorName *string
	)
	err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.Status, &createdBy, &creatorName,
		&s.TaskCount, &s.CompletedTaskCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if createdBy != nil {
		s.CreatedBy = &models.ProjectCreator{ID: *createdBy}
		if creatorName != nil {
			s.CreatedBy.FullName = *creatorName
		}
	}
	return nil
}

// GetByID loads a project regardless of tenant; callers compare tenants afterwards.
func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`
	if err := scanProject(r.db.QueryRow(ctx, query, id), project); err != nil {
		return nil, translateError(err)
	}
	return project, nil
}

func (r *projectRepo) GetSummary(ctx context.Context, tenantID, id uuid.UUID) (*models.ProjectSummary, error) {
	query, args, err := psql.Select(projectSummaryColumns...).
		From("projects p").
		LeftJoin("users u ON u.id = p.created_by").
		Where(sq.Eq{"p.tenant_id": tenantID}).
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	summary := &models.ProjectSummary{}
	if err := scanProjectSummary(r.db.QueryRow(ctx, query, args...), summary); err != nil {
		return nil, translateError(err)
	}
	return summary, nil
}

func projectFilters(b sq.SelectBuilder, f models.ProjectFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"p.tenant_id": f.TenantID})
	if f.Status != "" {
		b = b.Where(sq.Eq{"p.status": f.Status})
	}
	if f.Search != "" {
		b = b.Where(sq.ILike{"p.name": f.Search})
	}
	return b
}

func (r *projectRepo) List(ctx context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	total, err := count(ctx, r.db, projectFilters(psql.Select("COUNT(*)").From("projects p"), f))
	if err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	b := projectFilters(psql.Select(projectSummaryColumns...).From("projects p").LeftJoin("users u ON u.id = p.created_by"), f).
		OrderBy("p.created_at DESC").
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

	projects := make([]models.ProjectSummary, 0)
	for rows.Next() {
		var s models.ProjectSummary
		if err := scanProjectSummary(rows, &s); err != nil {
			return nil, 0, err
		}
		projects = append(projects, s)
	}
	return projects, total, rows.Err()
}

// CreateWithinQuota inserts a project while holding the tenant row lock.
func (r *projectRepo) CreateWithinQuota(ctx context.Context, project *models.Project) error {
	return translateError(withTx(ctx, r.db, func(tx pgx.Tx) error {
		var maxProjects int
		if err := tx.QueryRow(ctx, `SELECT max_projects FROM tenants WHERE id = $1 FOR UPDATE`, project.TenantID).Scan(&maxProjects); err != nil {
			return err
		}
		var current int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`, project.TenantID).Scan(&current); err != nil {
			return err
		}
		if current >= maxProjects {
			return ErrQuotaExceeded
		}

		query := `
			INSERT INTO projects (id, tenant_id, name, description, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		return tx.QueryRow(ctx, query, project.ID, project.TenantID, project.Name, project.Description,
			project.Status, project.CreatedBy).Scan(&project.CreatedAt, &project.UpdatedAt)
	}))
}

func (r *projectRepo) Update(ctx context.Context, tenantID, id uuid.UUID, change models.ProjectUpdate) (*models.Project, error) {
	b := psql.Update("projects")
	if change.Name != nil {
		b = b.Set("name", *change.Name)
	}
	if change.SetDescription {
		b = b.Set("description", change.Description)
	}
	if change.Status != nil {
		b = b.Set("status", *change.Status)
	}
	b = b.Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + projectColumns)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	project := &models.Project{}
	if err := scanProject(r.db.QueryRow(ctx, query, args...), project); err != nil {
		return nil, translateError(err)
	}
	return project, nil
}

// Delete removes a project; its tasks go with it through the foreign key.
func (r *projectRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
