package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectflow/internal/models"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

// Values in squirrel predicates go through driver.Valuer, so uuid.UUID
// arguments reach the pool as strings. Raw SQL arguments stay uuid.UUID.

var (
	userRowColumns   = []string{"id", "tenant_id", "email", "password_hash", "full_name", "role", "is_active", "created_at", "updated_at"}
	tenantRowColumns = []string{"id", "name", "subdomain", "status", "subscription_plan", "max_users", "max_projects", "created_at", "updated_at"}
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23503"}), ErrInvalidReference)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}

func TestTenantRepo_GetBySubdomainNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("FROM tenants")).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	_, err := NewTenantRepo(mock).GetBySubdomain(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantRepo_ListFiltersAndPages(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	id := uuid.New()

	mock.ExpectQuery(q("SELECT COUNT(*) FROM tenants t WHERE t.status = $1")).
		WithArgs("active").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(15))
	mock.ExpectQuery(q("FROM tenants t WHERE t.status = $1 ORDER BY t.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("active").
		WillReturnRows(pgxmock.NewRows(append(tenantRowColumns, "total_users", "total_projects")).
			AddRow(id, "Acme", "acme", "active", "pro", 10, 5, now, now, 3, 2))

	tenants, total, err := NewTenantRepo(mock).List(context.Background(),
		models.TenantFilter{Status: "active", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	require.Len(t, tenants, 1)
	assert.Equal(t, "acme", tenants[0].Subdomain)
	assert.Equal(t, 3, tenants[0].TotalUsers)
	assert.Equal(t, 2, tenants[0].TotalProjects)
}

func TestTenantRepo_UpdateOnlySuppliedFields(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()
	now := time.Now()
	name := "Acme Corp"

	mock.ExpectQuery(q("UPDATE tenants SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING")).
		WithArgs(name, id.String()).
		WillReturnRows(pgxmock.NewRows(tenantRowColumns).AddRow(id, name, "acme", "active", "free", 5, 3, now, now))

	tenant, err := NewTenantRepo(mock).Update(context.Background(), id, models.TenantUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, tenant.Name)
}

func TestTenantRepo_CreateWithAdminDuplicateRollsBack(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()
	tenant := &models.Tenant{ID: tenantID, Name: "Acme", Subdomain: "acme", Status: "active", SubscriptionPlan: "free", MaxUsers: 5, MaxProjects: 3}
	admin := &models.User{ID: uuid.New(), TenantID: &tenantID, Email: "a@acme.test", Role: models.RoleTenantAdmin, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO tenants")).
		WithArgs(tenantID, "Acme", "acme", "active", "free", 5, 3).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := NewTenantRepo(mock).CreateWithAdmin(context.Background(), tenant, admin)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTenantRepo_CreateWithAdminCommits(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	tenantID := uuid.New()
	tenant := &models.Tenant{ID: tenantID, Name: "Acme", Subdomain: "acme", Status: "active", SubscriptionPlan: "free", MaxUsers: 5, MaxProjects: 3}
	admin := &models.User{ID: uuid.New(), TenantID: &tenantID, Email: "a@acme.test", PasswordHash: "hash", FullName: "A",
		Role: models.RoleTenantAdmin, IsActive: true}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO tenants")).
		WithArgs(tenantID, "Acme", "acme", "active", "free", 5, 3).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs(admin.ID, admin.TenantID, "a@acme.test", "hash", "A", "tenant_admin", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	require.NoError(t, NewTenantRepo(mock).CreateWithAdmin(context.Background(), tenant, admin))
	assert.Equal(t, now, tenant.CreatedAt)
	assert.Equal(t, now, admin.CreatedAt)
}

func TestUserRepo_ListScopesToTenant(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()
	now := time.Now()
	pattern := "%bob%"

	mock.ExpectQuery(q("SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND (full_name ILIKE $2 OR email ILIKE $3) AND role = $4")).
		WithArgs(tenantID.String(), pattern, pattern, "user").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("FROM users WHERE tenant_id = $1 AND (full_name ILIKE $2 OR email ILIKE $3) AND role = $4 ORDER BY created_at DESC LIMIT 50 OFFSET 0")).
		WithArgs(tenantID.String(), pattern, pattern, "user").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(uuid.New(), &tenantID, "bob@acme.test", "hash", "Bob", "user", true, now, now))

	users, total, err := NewUserRepo(mock).List(context.Background(),
		models.UserFilter{TenantID: tenantID, Search: pattern, Role: "user", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleUser, users[0].Role)
	assert.True(t, users[0].BelongsTo(tenantID))
}

func TestUserRepo_GetSuperAdminByEmail(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(q("FROM users WHERE tenant_id IS NULL AND role = $1 AND email = $2")).
		WithArgs("super_admin", "ops@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(uuid.New(), (*uuid.UUID)(nil), "ops@example.com", "hash", "Ops", "super_admin", true, now, now))

	user, err := NewUserRepo(mock).GetSuperAdminByEmail(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.TenantID)
	assert.Equal(t, models.RoleSuperAdmin, user.Role)
}

func quotaUser(tenantID uuid.UUID) *models.User {
	return &models.User{ID: uuid.New(), TenantID: &tenantID, Email: "bob@acme.test", PasswordHash: "hash",
		FullName: "Bob", Role: models.RoleUser, IsActive: true}
}

func TestUserRepo_CreateWithinQuota(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()
	user := quotaUser(tenantID)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT max_users FROM tenants WHERE id = $1 FOR UPDATE")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"max_users"}).AddRow(5))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM users WHERE tenant_id = $1")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs(user.ID, user.TenantID, user.Email, user.PasswordHash, user.FullName, "user", true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	require.NoError(t, NewUserRepo(mock).CreateWithinQuota(context.Background(), user))
	assert.Equal(t, now, user.CreatedAt)
}

func TestUserRepo_CreateWithinQuotaAtLimit(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT max_users FROM tenants WHERE id = $1 FOR UPDATE")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"max_users"}).AddRow(5))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM users WHERE tenant_id = $1")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	err := NewUserRepo(mock).CreateWithinQuota(context.Background(), quotaUser(tenantID))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestUserRepo_CreateWithinQuotaDuplicateEmail(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"max_users"}).AddRow(5))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM users")).WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := NewUserRepo(mock).CreateWithinQuota(context.Background(), quotaUser(tenantID))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepo_DeleteUnassignsTasksFirst(t *testing.T) {
	mock := newMock(t)
	tenantID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE tasks SET assigned_to = NULL")).
		WithArgs(tenantID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(q("DELETE FROM users WHERE tenant_id = $1 AND id = $2")).
		WithArgs(tenantID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	assert.NoError(t, NewUserRepo(mock).Delete(context.Background(), tenantID, userID))
}

func TestUserRepo_DeleteMissingRollsBack(t *testing.T) {
	mock := newMock(t)
	tenantID, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE tasks SET assigned_to = NULL")).
		WithArgs(tenantID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(q("DELETE FROM users")).
		WithArgs(tenantID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewUserRepo(mock).Delete(context.Background(), tenantID, userID), ErrNotFound)
}

func TestUserRepo_ExistsInTenant(t *testing.T) {
	mock := newMock(t)
	tenantID, userID := uuid.New(), uuid.New()

	mock.ExpectQuery(q("SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND id = $2)")).
		WithArgs(tenantID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := NewUserRepo(mock).ExistsInTenant(context.Background(), tenantID, userID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProjectRepo_CreateWithinQuotaAtLimit(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT max_projects FROM tenants WHERE id = $1 FOR UPDATE")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"max_projects"}).AddRow(2))
	mock.ExpectQuery(q("SELECT COUNT(*) FROM projects WHERE tenant_id = $1")).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := NewProjectRepo(mock).CreateWithinQuota(context.Background(), &models.Project{ID: uuid.New(), TenantID: tenantID, Name: "Third"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestProjectRepo_CreateWithinQuotaMissingTenant(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(q("FOR UPDATE")).WithArgs(tenantID).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := NewProjectRepo(mock).CreateWithinQuota(context.Background(), &models.Project{ID: uuid.New(), TenantID: tenantID, Name: "P"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_ListWithCounts(t *testing.T) {
	mock := newMock(t)
	tenantID := uuid.New()
	creator := uuid.New()
	creatorName := "Alice"
	description := "Marketing site"
	now := time.Now()

	mock.ExpectQuery(q("SELECT COUNT(*) FROM projects p WHERE p.tenant_id = $1 AND p.name ILIKE $2")).
		WithArgs(tenantID.String(), "%site%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("LEFT JOIN users u ON u.id = p.created_by WHERE p.tenant_id = $1 AND p.name ILIKE $2 ORDER BY p.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(tenantID.String(), "%site%").
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "status", "created_by", "full_name",
			"task_count", "completed_task_count", "created_at", "updated_at"}).
			AddRow(uuid.New(), tenantID, "Website", &description, "active", &creator, &creatorName, 4, 1, now, now))

	projects, total, err := NewProjectRepo(mock).List(context.Background(),
		models.ProjectFilter{TenantID: tenantID, Search: "%site%", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].CreatedBy)
	assert.Equal(t, "Alice", projects[0].CreatedBy.FullName)
	assert.Equal(t, 4, projects[0].TaskCount)
	assert.Equal(t, 1, projects[0].CompletedTaskCount)
}

func TestProjectRepo_DeleteScopedToTenant(t *testing.T) {
	mock := newMock(t)
	tenantID, id := uuid.New(), uuid.New()

	mock.ExpectExec(q("DELETE FROM projects WHERE tenant_id = $1 AND id = $2")).
		WithArgs(tenantID, id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, NewProjectRepo(mock).Delete(context.Background(), tenantID, id), ErrNotFound)
}

func TestTaskRepo_ListScopesTenantAndProject(t *testing.T) {
	mock := newMock(t)
	tenantID, projectID := uuid.New(), uuid.New()
	assignee := uuid.New()
	name, email := "Bob", "bob@acme.test"
	now := time.Now()

	mock.ExpectQuery(q("SELECT COUNT(*) FROM tasks t WHERE t.tenant_id = $1 AND t.project_id = $2 AND t.status = $3 AND t.assigned_to = $4")).
		WithArgs(tenantID.String(), projectID.String(), "todo", assignee.String()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(q("LEFT JOIN users u ON u.id = t.assigned_to WHERE t.tenant_id = $1 AND t.project_id = $2 AND t.status = $3 AND t.assigned_to = $4 ORDER BY t.created_at DESC")).
		WithArgs(tenantID.String(), projectID.String(), "todo", assignee.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "tenant_id", "title", "description", "status", "priority",
			"assigned_to", "created_by", "due_date", "created_at", "updated_at", "full_name", "email"}).
			AddRow(uuid.New(), projectID, tenantID, "Write copy", (*string)(nil), "todo", "high",
				&assignee, (*uuid.UUID)(nil), (*time.Time)(nil), now, now, &name, &email))

	tasks, total, err := NewTaskRepo(mock).List(context.Background(), models.TaskFilter{
		TenantID: tenantID, ProjectID: projectID, Status: "todo", AssignedTo: &assignee, Limit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, "bob@acme.test", tasks[0].Assignee.Email)
}

func TestTaskRepo_CreateCrossTenantRejectedByForeignKey(t *testing.T) {
	mock := newMock(t)
	task := &models.Task{ID: uuid.New(), ProjectID: uuid.New(), TenantID: uuid.New(), Title: "X", Status: "todo", Priority: "low"}

	mock.ExpectQuery(q("INSERT INTO tasks")).
		WithArgs(task.ID, task.ProjectID, task.TenantID, "X", task.Description, "todo", "low", task.AssignedTo, task.CreatedBy, task.DueDate).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "tasks_project_tenant_fkey"})

	assert.ErrorIs(t, NewTaskRepo(mock).Create(context.Background(), task), ErrInvalidReference)
}

func TestTaskRepo_UpdateClearsAssignee(t *testing.T) {
	mock := newMock(t)
	tenantID, id := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(q("UPDATE tasks SET assigned_to = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3 RETURNING")).
		WithArgs((*uuid.UUID)(nil), tenantID.String(), id.String()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "project_id", "tenant_id", "title", "description", "status", "priority",
			"assigned_to", "created_by", "due_date", "created_at", "updated_at"}).
			AddRow(id, uuid.New(), tenantID, "X", (*string)(nil), "todo", "low", (*uuid.UUID)(nil), (*uuid.UUID)(nil), (*time.Time)(nil), now, now))

	task, err := NewTaskRepo(mock).Update(context.Background(), tenantID, id, models.TaskUpdate{SetAssignedTo: true})
	require.NoError(t, err)
	assert.Nil(t, task.AssignedTo)
}
