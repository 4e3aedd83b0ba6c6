package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     *uuid.UUID `json:"tenantId" db:"tenant_id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	FullName     string     `json:"fullName" db:"full_name"`
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// BelongsTo reports whether the user is a member of the given tenant.
func (u *User) BelongsTo(tenantID uuid.UUID) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}

type UserFilter struct {
	TenantID uuid.UUID
	Search   string
	Role     string
	Limit    int
	Offset   int
}

type UserUpdate struct {
	FullName *string
	Role     *Role
	IsActive *bool
}

func (u UserUpdate) Empty() bool {
	return u.FullName == nil && u.Role == nil && u.IsActive == nil
}

// TouchesPrivilegedFields reports whether the update changes role or activation state.
func (u UserUpdate) TouchesPrivilegedFields() bool {
	return u.Role != nil || u.IsActive != nil
}
