package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ProjectID   uuid.UUID  `json:"projectId" db:"project_id"`
	TenantID    uuid.UUID  `json:"tenantId" db:"tenant_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	AssignedTo  *uuid.UUID `json:"assignedTo" db:"assigned_to"`
	CreatedBy   *uuid.UUID `json:"createdBy" db:"created_by"`
	DueDate     *time.Time `json:"dueDate" db:"due_date"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

func (t *Task) CreatedByUser(userID uuid.UUID) bool {
	return t.CreatedBy != nil && *t.CreatedBy == userID
}

func (t *Task) AssignedToUser(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

type TaskAssignee struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// TaskView is a task row joined with its assignee.
type TaskView struct {
	Task
	Assignee *TaskAssignee `json:"assignee"`
}

type TaskFilter struct {
	TenantID   uuid.UUID
	ProjectID  uuid.UUID
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// TaskUpdate carries a partial task change. The Set* flags mark nullable
// fields the caller supplied, so an explicit null clears the column.
type TaskUpdate struct {
	Title          *string
	Description    *string
	SetDescription bool
	Status         *string
	Priority       *string
	AssignedTo     *uuid.UUID
	SetAssignedTo  bool
	DueDate        *time.Time
	SetDueDate     bool
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && !u.SetDescription && u.Status == nil && u.Priority == nil && !u.SetAssignedTo && !u.SetDueDate
}
