package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"projectflow/internal/models"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	List(ctx context.Context, filter models.TenantFilter) ([]models.TenantSummary, int, error)
	Stats(ctx context.Context, id uuid.UUID) (models.TenantStats, error)
	Update(ctx context.Context, id uuid.UUID, change models.TenantUpdate) (*models.Tenant, error)
	CreateWithAdmin(ctx context.Context, tenant *models.Tenant, admin *models.User) error
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = "id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at"

func scanTenant(row pgx.Row, t *models.Tenant, extra ...any) error {
	dest := []any{&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.SubscriptionPlan, &t.MaxUsers, &t.MaxProjects, &t.CreatedAt, &t.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	if err := scanTenant(r.db.QueryRow(ctx, query, id), tenant); err != nil {
		return nil, translateError(err)
	}
	return tenant, nil
}

func (r *tenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE subdomain = $1
	`
	if err := scanTenant(r.db.QueryRow(ctx, query, subdomain), tenant); err != nil {
		return nil, translateError(err)
	}
	return tenant, nil
}

func tenantFilters(b sq.SelectBuilder, f models.TenantFilter) sq.SelectBuilder {
	if f.Status != "" {
		b = b.Where(sq.Eq{"t.status": f.Status})
	}
	if f.SubscriptionPlan != "" {
		b = b.Where(sq.Eq{"t.subscription_plan": f.SubscriptionPlan})
	}
	return b
}

func (r *tenantRepo) List(ctx context.Context, f models.TenantFilter) ([]models.TenantSummary, int, error) {
	total, err := count(ctx, r.db, tenantFilters(psql.Select("COUNT(*)").From("tenants t"), f))
	if err != nil {
		return nil, 0, fmt.Errorf("count tenants: %w", err)
	}

	b := psql.Select(
		"t.id", "t.name", "t.subdomain", "t.status", "t.subscription_plan", "t.max_users", "t.max_projects", "t.created_at", "t.updated_at",
		"(SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id) AS total_users",
		"(SELECT COUNT(*) FROM projects p WHERE p.tenant_id = t.id) AS total_projects",
	).From("tenants t")
	b = tenantFilters(b, f).
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

	tenants := make([]models.TenantSummary, 0)
	for rows.Next() {
		var s models.TenantSummary
		if err := scanTenant(rows, &s.Tenant, &s.TotalUsers, &s.TotalProjects); err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, s)
	}
	return tenants, total, rows.Err()
}

func (r *tenantRepo) Stats(ctx context.Context, id uuid.UUID) (models.TenantStats, error) {
	var stats models.TenantStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM projects WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM tasks WHERE tenant_id = $1)
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&stats.TotalUsers, &stats.TotalProjects, &stats.TotalTasks)
	return stats, err
}

// Update changes only the supplied fields and returns the stored row.
func (r *tenantRepo) Update(ctx context.Context, id uuid.UUID, change models.TenantUpdate) (*models.Tenant, error) {
	b := psql.Update("tenants")
	if change.Name != nil {
		b = b.Set("name", *change.Name)
	}
	if change.Status != nil {
		b = b.Set("status", *change.Status)
	}
	if change.SubscriptionPlan != nil {
		b = b.Set("subscription_plan", *change.SubscriptionPlan)
	}
	if change.MaxUsers != nil {
		b = b.Set("max_users", *change.MaxUsers)
	}
	if change.MaxProjects != nil {
		b = b.Set("max_projects", *change.MaxProjects)
	}
	b = b.Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + tenantColumns)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	tenant := &models.Tenant{}
	if err := scanTenant(r.db.QueryRow(ctx, query, args...), tenant); err != nil {
		return nil, translateError(err)
	}
	return tenant, nil
}

// CreateWithAdmin inserts a tenant and its first tenant admin atomically.
func (r *tenantRepo) CreateWithAdmin(ctx context.Context, tenant *models.Tenant, admin *models.User) error {
	return translateError(withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query, tenant.ID, tenant.Name, tenant.Subdomain, tenant.Status,
			tenant.SubscriptionPlan, tenant.MaxUsers, tenant.MaxProjects).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
		if err != nil {
			return err
		}
		return insertUser(ctx, tx, admin)
	}))
}
