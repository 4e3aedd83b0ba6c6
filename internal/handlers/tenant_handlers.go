package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"projectflow/internal/services"
)

// TenantHandlers handles tenant-related HTTP requests
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// ListTenants handles GET /tenants (super admin only)
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req services.ListTenantsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.tenantService.List(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "")
}

// GetTenant handles GET /tenants/:id
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	tenantID, err := pathID(c, "id", "Tenant ID")
	if err != nil {
		return err
	}
	tenant, err := h.tenantService.Get(c.Request().Context(), id, tenantID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tenant, "")
}

// UpdateTenant handles PUT /tenants/:id
func (h *TenantHandlers) UpdateTenant(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	tenantID, err := pathID(c, "id", "Tenant ID")
	if err != nil {
		return err
	}
	var req services.UpdateTenantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tenant, err := h.tenantService.Update(c.Request().Context(), id, tenantID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, tenant, "Tenant updated successfully")
}
