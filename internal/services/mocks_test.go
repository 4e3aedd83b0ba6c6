package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"projectflow/internal/authz"
	"projectflow/internal/models"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) List(ctx context.Context, filter models.TenantFilter) ([]models.TenantSummary, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.TenantSummary), args.Int(1), args.Error(2)
}

func (m *MockTenantRepository) Stats(ctx context.Context, id uuid.UUID) (models.TenantStats, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.TenantStats), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, id uuid.UUID, change models.TenantUpdate) (*models.Tenant, error) {
	args := m.Called(ctx, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) CreateWithAdmin(ctx context.Context, tenant *models.Tenant, admin *models.User) error {
	args := m.Called(ctx, tenant, admin)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTenantAndEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetSuperAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsInTenant(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) CreateWithinQuota(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateSuperAdmin(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, tenantID, id uuid.UUID, change models.UserUpdate) (*models.User, error) {
	args := m.Called(ctx, tenantID, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) GetSummary(ctx context.Context, tenantID, id uuid.UUID) (*models.ProjectSummary, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectSummary), args.Error(1)
}

func (m *MockProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.ProjectSummary), args.Int(1), args.Error(2)
}

func (m *MockProjectRepository) CreateWithinQuota(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Update(ctx context.Context, tenantID, id uuid.UUID, change models.ProjectUpdate) (*models.Project, error) {
	args := m.Called(ctx, tenantID, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.TaskView), args.Int(1), args.Error(2)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, tenantID, id uuid.UUID, change models.TaskUpdate) (*models.Task, error) {
	args := m.Called(ctx, tenantID, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type fakeTokens struct{}

func (fakeTokens) Issue(user *models.User) (string, int64, error) {
	return "token-" + user.ID.String(), 86400, nil
}

// memoryLimiter is an in-process LoginLimiter for tests.
type memoryLimiter struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func newMemoryLimiter(max int) *memoryLimiter {
	return &memoryLimiter{max: max, failures: map[string]int{}}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures[key] < l.max, nil
}

func (l *memoryLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key]++
	return nil
}

func (l *memoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
	return nil
}

func tenantAdmin(tenantID uuid.UUID) authz.Identity {
	return authz.Identity{UserID: uuid.New(), TenantID: &tenantID, Role: models.RoleTenantAdmin}
}

func member(tenantID uuid.UUID) authz.Identity {
	return authz.Identity{UserID: uuid.New(), TenantID: &tenantID, Role: models.RoleUser}
}

func superAdmin() authz.Identity {
	return authz.Identity{UserID: uuid.New(), Role: models.RoleSuperAdmin}
}

func ptr[T any](v T) *T { return &v }
