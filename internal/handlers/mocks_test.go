package handlers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"projectflow/internal/authz"
	"projectflow/internal/models"
	"projectflow/internal/services"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*services.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LoginResult), args.Error(1)
}

func (m *MockAuthService) RegisterTenant(ctx context.Context, req services.RegisterTenantRequest) (*services.RegisterTenantResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RegisterTenantResult), args.Error(1)
}

func (m *MockAuthService) Me(ctx context.Context, id authz.Identity) (*services.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) List(ctx context.Context, id authz.Identity, req services.ListTenantsRequest) (*services.TenantList, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TenantList), args.Error(1)
}

func (m *MockTenantService) Get(ctx context.Context, id authz.Identity, tenantID uuid.UUID) (*models.TenantDetail, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantDetail), args.Error(1)
}

func (m *MockTenantService) Update(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req services.UpdateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, id, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req services.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, id, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req services.ListUsersRequest) (*services.UserList, error) {
	args := m.Called(ctx, id, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.UserList), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id authz.Identity, userID uuid.UUID, req services.UpdateUserRequest) (*models.User, error) {
	args := m.Called(ctx, id, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id authz.Identity, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, id authz.Identity, req services.CreateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, id authz.Identity, req services.ListProjectsRequest) (*services.ProjectList, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProjectList), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id authz.Identity, projectID uuid.UUID) (*models.ProjectSummary, error) {
	args := m.Called(ctx, id, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProjectSummary), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, id authz.Identity, projectID uuid.UUID, req services.UpdateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, id, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id authz.Identity, projectID uuid.UUID) error {
	return m.Called(ctx, id, projectID).Error(0)
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, id authz.Identity, projectID uuid.UUID, req services.CreateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, id, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, id authz.Identity, projectID uuid.UUID, req services.ListTasksRequest) (*services.TaskList, error) {
	args := m.Called(ctx, id, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TaskList), args.Error(1)
}

func (m *MockTaskService) UpdateStatus(ctx context.Context, id authz.Identity, taskID uuid.UUID, req services.UpdateTaskStatusRequest) (*models.Task, error) {
	args := m.Called(ctx, id, taskID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id authz.Identity, taskID uuid.UUID, req services.UpdateTaskRequest) (*models.Task, error) {
	args := m.Called(ctx, id, taskID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id authz.Identity, taskID uuid.UUID) error {
	return m.Called(ctx, id, taskID).Error(0)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
