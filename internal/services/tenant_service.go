package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/models"
	"projectflow/internal/repositories"
)

const defaultTenantPageSize = 10

type ListTenantsRequest struct {
	Page             int    `query:"page"`
	Limit            int    `query:"limit"`
	Status           string `query:"status" validate:"omitempty,oneof=active suspended trial"`
	SubscriptionPlan string `query:"subscriptionPlan" validate:"omitempty,oneof=free pro enterprise"`
}

type TenantList struct {
	Tenants    []models.TenantSummary `json:"tenants"`
	Pagination models.Pagination      `json:"pagination"`
}

type UpdateTenantRequest struct {
	Name             *string `json:"name" validate:"omitempty,max=255"`
	Status           *string `json:"status" validate:"omitempty,oneof=active suspended trial"`
	SubscriptionPlan *string `json:"subscriptionPlan" validate:"omitempty,oneof=free pro enterprise"`
	MaxUsers         *int    `json:"maxUsers" validate:"omitempty,min=1"`
	MaxProjects      *int    `json:"maxProjects" validate:"omitempty,min=1"`
}

func (r UpdateTenantRequest) change() models.TenantUpdate {
	return models.TenantUpdate{
		Name:             r.Name,
		Status:           r.Status,
		SubscriptionPlan: r.SubscriptionPlan,
		MaxUsers:         r.MaxUsers,
		MaxProjects:      r.MaxProjects,
	}
}

type TenantService interface {
	List(ctx context.Context, id authz.Identity, req ListTenantsRequest) (*TenantList, error)
	Get(ctx context.Context, id authz.Identity, tenantID uuid.UUID) (*models.TenantDetail, error)
	Update(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req UpdateTenantRequest) (*models.Tenant, error)
}

type tenantService struct {
	repo repositories.TenantRepository
}

func NewTenantService(repo repositories.TenantRepository) TenantService {
	return &tenantService{repo: repo}
}

func (s *tenantService) List(ctx context.Context, id authz.Identity, req ListTenantsRequest) (*TenantList, error) {
	if err := authz.CanListTenants(id); err != nil {
		return nil, err
	}
	if req.Status != "" {
		if err := common.ValidateOneOf(req.Status, "status", tenantStatuses...); err != nil {
			return nil, common.ValidationError(err.Error())
		}
	}
	if req.SubscriptionPlan != "" {
		if err := common.ValidateOneOf(req.SubscriptionPlan, "subscriptionPlan", plans...); err != nil {
			return nil, common.ValidationError(err.Error())
		}
	}

	page := common.NormalizePage(req.Page, req.Limit, defaultTenantPageSize)
	tenants, total, err := s.repo.List(ctx, models.TenantFilter{
		Status:           req.Status,
		SubscriptionPlan: req.SubscriptionPlan,
		Limit:            page.Limit,
		Offset:           page.Offset,
	})
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("list tenants: %w", err))
	}
	return &TenantList{Tenants: tenants, Pagination: models.NewPagination(page.Page, page.Limit, total)}, nil
}

// Get checks tenant membership before the lookup, so a foreign tenant id is
// refused whether or not it exists.
func (s *tenantService) Get(ctx context.Context, id authz.Identity, tenantID uuid.UUID) (*models.TenantDetail, error) {
	if err := authz.CanReadTenant(id, tenantID); err != nil {
		return nil, err
	}
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Tenant")
	}
	stats, err := s.repo.Stats(ctx, tenantID)
	if err != nil {
		return nil, common.InternalError(fmt.Errorf("tenant stats: %w", err))
	}
	return &models.TenantDetail{Tenant: *tenant, Stats: stats}, nil
}

var (
	tenantStatuses = []string{models.TenantStatusActive, models.TenantStatusSuspended, models.TenantStatusTrial}
	plans          = []string{models.PlanFree, models.PlanPro, models.PlanEnterprise}
)

func validateTenantUpdate(req *UpdateTenantRequest) error {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return common.ValidationError("name cannot be empty")
		}
		req.Name = &trimmed
	}
	if req.Status != nil {
		if err := common.ValidateOneOf(*req.Status, "status", tenantStatuses...); err != nil {
			return common.ValidationError(err.Error())
		}
	}
	if req.SubscriptionPlan != nil {
		if err := common.ValidateOneOf(*req.SubscriptionPlan, "subscriptionPlan", plans...); err != nil {
			return common.ValidationError(err.Error())
		}
	}
	if req.MaxUsers != nil && *req.MaxUsers < 1 {
		return common.ValidationError("maxUsers must be at least 1")
	}
	if req.MaxProjects != nil && *req.MaxProjects < 1 {
		return common.ValidationError("maxProjects must be at least 1")
	}
	return nil
}

// Update applies the field-level tenant policy before touching the store.
func (s *tenantService) Update(ctx context.Context, id authz.Identity, tenantID uuid.UUID, req UpdateTenantRequest) (*models.Tenant, error) {
	change := req.change()
	if err := authz.CanUpdateTenant(id, tenantID, change); err != nil {
		return nil, err
	}
	if change.Empty() {
		return nil, common.ErrNoFieldsToUpdate
	}
	if err := validateTenantUpdate(&req); err != nil {
		return nil, err
	}

	tenant, err := s.repo.Update(ctx, tenantID, req.change())
	if err != nil {
		return nil, notFoundOrInternal(err, "Tenant")
	}
	return tenant, nil
}
