package models

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// ParseRole converts a raw role string into a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// TenantScoped reports whether accounts with this role must belong to a tenant.
func (r Role) TenantScoped() bool {
	return r == RoleTenantAdmin || r == RoleUser
}
