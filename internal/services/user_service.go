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

const defaultUserPageSize = 50

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=255"`
	Role     string `json:"role" validate:"omitempty,oneof=user tenant_admin super_admin"`
}

type ListUsersRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
	Role   string `query:"role" validate:"omitempty,oneof=user tenant_admin"`
}

type UserList struct {
	Users      []models.User     `json:"users"`
	Total      int               `json:"total"`
	Pagination models.Pagination `json:"pagination"`
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=user tenant_admin super_admin"`
	IsActive *bool   `json:"isActive"`
}

type UserService interface {
	Create(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req CreateUserRequest) (*models.User, error)
	List(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req ListUsersRequest) (*UserList, error)
	Update(ctx context.Context, id authz.Identity, userID uuid.UUID, req UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id authz.Identity, userID uuid.UUID) error
}

type userService struct {
	repo   repositories.UserRepository
	hasher *PasswordHasher
}

func NewUserService(repo repositories.UserRepository, hasher *PasswordHasher) UserService {
	return &userService{repo: repo, hasher: hasher}
}

func parseRole(raw string) (models.Role, error) {
	if raw == "" {
		return models.RoleUser, nil
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		return "", common.ValidationError("role must be one of: user, tenant_admin")
	}
	return role, nil
}

// Create adds a member to tenantID. The quota check and insert happen in one
// store transaction; a full tenant is reported before a duplicate email.
func (s *userService) Create(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req CreateUserRequest) (*models.User, error) {
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if err := authz.CanCreateTenantUser(id, tenantID, role); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" || req.Password == "" {
		return nil, common.ValidationError("Email, password and fullName are required")
	}
	if len(req.Password) < 6 {
		return nil, common.ValidationError("password must be at least 6 characters")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, common.InternalError(err)
	}
	user := &models.User{
		ID:           uuid.New(),
		TenantID:     &tenantID,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}

	err = s.repo.CreateWithinQuota(ctx, user)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, repositories.ErrQuotaExceeded):
		return nil, common.ErrUserQuotaExceeded
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, common.ConflictError("Email already exists in this tenant")
	case errors.Is(err, repositories.ErrNotFound):
		return nil, common.NotFoundError("Tenant")
	default:
		return nil, common.InternalError(fmt.Errorf("create user: %w", err))
	}
}

func (s *userService) List(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req ListUsersRequest) (*UserList, error) {
	if err := authz.CanListTenantUsers(id, tenantID); err != nil {
		return nil, err
	}
	if req.Role != "" {
		if role, err := models.ParseRole(req.Role); err != nil || !role.TenantScoped() {
			return nil, common.ValidationError("role must be one of: user, tenant_admin")
		}
	}

	page := common.NormalizePage(req.Page, req.Limit, defaultUserPageSize)
	users, total, err := s.repo.List(ctx, models.UserFilter{
		TenantID: tenantID,
		Search:   common.SearchPattern(req.Search),
		Role:     req.Role,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("list users: %w", err))
	}
	return &UserList{Users: users, Total: total, Pagination: models.NewPagination(page.Page, page.Limit, total)}, nil
}

func (r UpdateUserRequest) change() (models.UserUpdate, error) {
	change := models.UserUpdate{IsActive: r.IsActive}
	if r.FullName != nil {
		name := strings.TrimSpace(*r.FullName)
		if name == "" {
			return change, common.ValidationError("fullName cannot be empty")
		}
		change.FullName = &name
	}
	if r.Role != nil {
		role, err := models.ParseRole(*r.Role)
		if err != nil {
			return change, common.ValidationError("role must be one of: user, tenant_admin")
		}
		change.Role = &role
	}
	return change, nil
}

// Update loads the target first: a missing user is NotFound, a user of
// another tenant is Forbidden.
func (s *userService) Update(ctx context.Context, id authz.Identity, userID uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	change, err := req.change()
	if err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOrInternal(err, "User")
	}
	if err := authz.CanUpdateUser(id, target, change); err != nil {
		return nil, err
	}
	if change.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}

	updated, err := s.repo.Update(ctx, *target.TenantID, userID, change)
	if err != nil {
		return nil, notFoundOrInternal(err, "User")
	}
	return updated, nil
}

// Delete refuses self-deletion before any lookup, then unassigns the user's
// tasks and removes the account.
func (s *userService) Delete(ctx context.Context, id authz.Identity, userID uuid.UUID) error {
	if err := authz.CanDeleteUser(id, userID); err != nil {
		return err
	}

	target, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOrInternal(err, "User")
	}
	if target.TenantID == nil {
		return common.ForbiddenError("Access denied")
	}
	if err := authz.RequireSameTenant(id, *target.TenantID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, *target.TenantID, userID); err != nil {
		return notFoundOrInternal(err, "User")
	}
	return nil
}
