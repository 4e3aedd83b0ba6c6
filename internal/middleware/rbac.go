package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"

	"projectflow/internal/authz"
	"projectflow/internal/common"
	"projectflow/internal/models"
)

// RequireRole rejects callers whose role is not in roles. It runs after Identity.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := authz.FromContext(c.Request().Context())
			if err != nil {
				return err
			}
			if !slices.Contains(roles, id.Role) {
				return common.ForbiddenError("Insufficient permissions")
			}
			return next(c)
		}
	}
}
