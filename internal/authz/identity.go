// Package authz holds the per-request identity and the pure authorization
// decisions applied by every resource service.
package authz

import (
	"context"

	"github.com/google/uuid"

	"projectflow/internal/common"
	"projectflow/internal/models"
)

// Identity is the verified caller of a request.
type Identity struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Role     models.Role
}

// IsSuperAdmin reports whether the caller is the tenantless operator.
func (id Identity) IsSuperAdmin() bool {
	return id.Role == models.RoleSuperAdmin
}

func (id Identity) IsTenantAdmin() bool {
	return id.Role == models.RoleTenantAdmin
}

// InTenant reports whether the caller is a member of tenantID.
func (id Identity) InTenant(tenantID uuid.UUID) bool {
	return id.TenantID != nil && *id.TenantID == tenantID
}

// Tenant returns the caller's tenant, failing for callers without one.
func (id Identity) Tenant() (uuid.UUID, error) {
	if id.TenantID == nil {
		return uuid.Nil, common.ForbiddenError("Access denied")
	}
	return *id.TenantID, nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by the auth middleware.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return Identity{}, common.UnauthenticatedError("Missing or invalid token")
	}
	return id, nil
}
