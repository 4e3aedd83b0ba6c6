package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"projectflow/internal/services"
)

// AuthHandlers handles authentication endpoints
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "")
}

// RegisterTenant handles POST /auth/register-tenant
func (h *AuthHandlers) RegisterTenant(c echo.Context) error {
	var req services.RegisterTenantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.authService.RegisterTenant(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, result, "Tenant registered successfully")
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	profile, err := h.authService.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "")
}

// Logout handles POST /auth/logout. Tokens are stateless; the client discards its copy.
func (h *AuthHandlers) Logout(c echo.Context) error {
	return respond(c, http.StatusOK, nil, "Logged out successfully")
}
