package authz

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"projectflow/internal/common"
	"projectflow/internal/models"
)

// Claims is the token payload issued at login.
type Claims struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewClaims builds the claim set for an authenticated user.
func NewClaims(user *models.User) *Claims {
	c := &Claims{
		UserID: user.ID.String(),
		Role:   user.Role.String(),
	}
	if user.TenantID != nil {
		c.TenantID = user.TenantID.String()
	}
	return c
}

// Identity validates the claim contents and converts them into an Identity.
// Tenant-scoped roles must carry a tenant and super_admin must not.
func (c *Claims) Identity() (Identity, error) {
	invalid := common.UnauthenticatedError("Invalid token")

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Identity{}, invalid
	}
	role, err := models.ParseRole(c.Role)
	if err != nil {
		return Identity{}, invalid
	}

	id := Identity{UserID: userID, Role: role}
	if c.TenantID != "" {
		tenantID, err := uuid.Parse(c.TenantID)
		if err != nil {
			return Identity{}, invalid
		}
		id.TenantID = &tenantID
	}
	if role.TenantScoped() != (id.TenantID != nil) {
		return Identity{}, invalid
	}
	return id, nil
}
