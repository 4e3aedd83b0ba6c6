package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusArchived  = "archived"
	ProjectStatusCompleted = "completed"
)

type Project struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenantId" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	CreatedBy   *uuid.UUID `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// CreatedByUser reports whether the given user created the project.
func (p *Project) CreatedByUser(userID uuid.UUID) bool {
	return p.CreatedBy != nil && *p.CreatedBy == userID
}

type ProjectCreator struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
}

// ProjectSummary is a project row enriched with its creator and task counts.
type ProjectSummary struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenantId"`
	Name               string          `json:"name"`
	Description        *string         `json:"description"`
	Status             string          `json:"status"`
	CreatedBy          *ProjectCreator `json:"createdBy"`
	TaskCount          int             `json:"taskCount"`
	CompletedTaskCount int             `json:"completedTaskCount"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type ProjectFilter struct {
	TenantID uuid.UUID
	Status   string
	Search   string
	Limit    int
	Offset   int
}

type ProjectUpdate struct {
	Name           *string
	Description    *string
	SetDescription bool
	Status         *string
}

func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && !u.SetDescription && u.Status == nil
}
