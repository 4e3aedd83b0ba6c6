// Package testhelpers provisions a real Postgres schema and fixtures for
// tests that exercise store constraints. Tests using it are skipped unless
// TEST_DATABASE_URL is set.
package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"projectflow/internal/models"
	"projectflow/pkg/database"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL and applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if _, err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{Pool: pool, Cleanup: pool.Close}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestTenant creates a tenant with the given quotas under a unique subdomain.
func SetupTestTenant(t *testing.T, db *TestDB, maxUsers, maxProjects int) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		ID:               uuid.New(),
		Name:             "Test Tenant",
		Subdomain:        "t-" + uuid.NewString()[:8],
		Status:           models.TenantStatusActive,
		SubscriptionPlan: models.PlanFree,
		MaxUsers:         maxUsers,
		MaxProjects:      maxProjects,
	}
	query := `
		INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := db.Pool.QueryRow(context.Background(), query, tenant.ID, tenant.Name, tenant.Subdomain, tenant.Status,
		tenant.SubscriptionPlan, tenant.MaxUsers, tenant.MaxProjects).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM tenants WHERE id = $1`, tenant.ID)
	})
	return tenant
}

// SetupTestUser creates an active user in tenant with the given role.
func SetupTestUser(t *testing.T, db *TestDB, tenantID uuid.UUID, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        uuid.NewString()[:8] + "@example.test",
		PasswordHash: "not-a-real-hash",
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
	}
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := db.Pool.QueryRow(context.Background(), query, user.ID, user.TenantID, user.Email, user.PasswordHash,
		user.FullName, string(user.Role), user.IsActive).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SetupTestProject creates a project in tenant created by createdBy.
func SetupTestProject(t *testing.T, db *TestDB, tenantID, createdBy uuid.UUID) *models.Project {
	t.Helper()

	project := &models.Project{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "Test Project",
		Status:    models.ProjectStatusActive,
		CreatedBy: &createdBy,
	}
	query := `
		INSERT INTO projects (id, tenant_id, name, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := db.Pool.QueryRow(context.Background(), query, project.ID, project.TenantID, project.Name,
		project.Status, project.CreatedBy).Scan(&project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return project
}
