package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"projectflow/internal/services"
)

// UserHandlers handles tenant membership endpoints
type UserHandlers struct {
	userService services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// CreateUser handles POST /tenants/:id/users
func (h *UserHandlers) CreateUser(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	tenantID, err := pathID(c, "id", "Tenant ID")
	if err != nil {
		return err
	}
	var req services.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Create(c.Request().Context(), id, tenantID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, user, "User created successfully")
}

// ListUsers handles GET /tenants/:id/users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	tenantID, err := pathID(c, "id", "Tenant ID")
	if err != nil {
		return err
	}
	var req services.ListUsersRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.userService.List(c.Request().Context(), id, tenantID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "")
}

// UpdateUser handles PUT /users/:id
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id", "User ID")
	if err != nil {
		return err
	}
	var req services.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Update(c.Request().Context(), id, userID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "User updated successfully")
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id", "User ID")
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id, userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "User deleted successfully")
}
