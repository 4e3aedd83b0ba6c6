package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"projectflow/internal/models"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
	GetSuperAdminByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsInTenant(ctx context.Context, tenantID, userID uuid.UUID) (bool, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CreateWithinQuota(ctx context.Context, user *models.User) error
	CreateSuperAdmin(ctx context.Context, user *models.User) error
	Update(ctx context.Context, tenantID, id uuid.UUID, change models.UserUpdate) (*models.User, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type userRepo struct {
	db DB
}

func NewUserRepo(db DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = "id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at"

func scanUser(row pgx.Row, u *models.User) error {
	var role string
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.Role = models.Role(role)
	return nil
}

func (r *userRepo) getOne(ctx context.Context, b sq.SelectBuilder) (*models.User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	user := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, query, args...), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// GetByID loads a user regardless of tenant; callers compare tenants afterwards.
func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, psql.Select(userColumns).From("users").Where(sq.Eq{"id": id}))
}

func (r *userRepo) GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	return r.getOne(ctx, psql.Select(userColumns).From("users").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"email": email}))
}

func (r *userRepo) GetSuperAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, psql.Select(userColumns).From("users").
		Where(sq.Eq{"tenant_id": nil}).
		Where(sq.Eq{"role": string(models.RoleSuperAdmin)}).
		Where(sq.Eq{"email": email}))
}

func (r *userRepo) ExistsInTenant(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, tenantID, userID).Scan(&exists)
	return exists, err
}

func userFilters(b sq.SelectBuilder, f models.UserFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"tenant_id": f.TenantID})
	if f.Search != "" {
		b = b.Where(sq.Or{sq.ILike{"full_name": f.Search}, sq.ILike{"email": f.Search}})
	}
	if f.Role != "" {
		b = b.Where(sq.Eq{"role": f.Role})
	}
	return b
}

// List returns one page of a tenant's users. f.Search must already be an
// escaped ILIKE pattern.
func (r *userRepo) List(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	total, err := count(ctx, r.db, userFilters(psql.Select("COUNT(*)").From("users"), f))
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	b := userFilters(psql.Select(userColumns).From("users"), f).
		OrderBy("created_at DESC").
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

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func insertUser(ctx context.Context, q querier, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return q.QueryRow(ctx, query, user.ID, user.TenantID, user.Email, user.PasswordHash,
		user.FullName, string(user.Role), user.IsActive).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// CreateWithinQuota inserts a tenant user while holding the tenant row lock,
// so concurrent creations cannot push the tenant past max_users.
func (r *userRepo) CreateWithinQuota(ctx context.Context, user *models.User) error {
	if user.TenantID == nil {
		return fmt.Errorf("tenant user without tenant: %w", ErrInvalidReference)
	}
	tenantID := *user.TenantID
	return translateError(withTx(ctx, r.db, func(tx pgx.Tx) error {
		var maxUsers int
		if err := tx.QueryRow(ctx, `SELECT max_users FROM tenants WHERE id = $1 FOR UPDATE`, tenantID).Scan(&maxUsers); err != nil {
			return err
		}
		var current int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&current); err != nil {
			return err
		}
		if current >= maxUsers {
			return ErrQuotaExceeded
		}
		return insertUser(ctx, tx, user)
	}))
}

func (r *userRepo) CreateSuperAdmin(ctx context.Context, user *models.User) error {
	return translateError(insertUser(ctx, r.db, user))
}

func (r *userRepo) Update(ctx context.Context, tenantID, id uuid.UUID, change models.UserUpdate) (*models.User, error) {
	b := psql.Update("users")
	if change.FullName != nil {
		b = b.Set("full_name", *change.FullName)
	}
	if change.Role != nil {
		b = b.Set("role", string(*change.Role))
	}
	if change.IsActive != nil {
		b = b.Set("is_active", *change.IsActive)
	}
	b = b.Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	user := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, query, args...), user); err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

// Delete detaches the user's task assignments and removes the user in one transaction.
func (r *userRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return translateError(withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE tasks SET assigned_to = NULL, updated_at = NOW()
			WHERE tenant_id = $1 AND assigned_to = $2
		`, tenantID, id)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
