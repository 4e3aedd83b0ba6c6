package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusTrial     = "trial"

	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type Tenant struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Subdomain        string    `json:"subdomain" db:"subdomain"`
	Status           string    `json:"status" db:"status"`
	SubscriptionPlan string    `json:"subscriptionPlan" db:"subscription_plan"`
	MaxUsers         int       `json:"maxUsers" db:"max_users"`
	MaxProjects      int       `json:"maxProjects" db:"max_projects"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// TenantSummary is a tenant row as returned by the registry listing.
type TenantSummary struct {
	Tenant
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
}

type TenantStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
	TotalTasks    int `json:"totalTasks"`
}

type TenantDetail struct {
	Tenant
	Stats TenantStats `json:"stats"`
}

// TenantFilter narrows the registry listing. Empty fields are ignored.
type TenantFilter struct {
	Status           string
	SubscriptionPlan string
	Limit            int
	Offset           int
}

// TenantUpdate carries the fields a caller asked to change; nil means untouched.
type TenantUpdate struct {
	Name             *string
	Status           *string
	SubscriptionPlan *string
	MaxUsers         *int
	MaxProjects      *int
}

func (u TenantUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil && u.SubscriptionPlan == nil && u.MaxUsers == nil && u.MaxProjects == nil
}
