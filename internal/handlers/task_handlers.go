package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"projectflow/internal/services"
)

// TaskHandlers handles task endpoints nested under projects and addressed directly
type TaskHandlers struct {
	taskService services.TaskService
}

func NewTaskHandlers(taskService services.TaskService) *TaskHandlers {
	return &TaskHandlers{taskService: taskService}
}

// CreateTask handles POST /projects/:id/tasks
func (h *TaskHandlers) CreateTask(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id", "Project ID")
	if err != nil {
		return err
	}
	var req services.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.taskService.Create(c.Request().Context(), id, projectID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, task, "Task created successfully")
}

// ListTasks handles GET /projects/:id/tasks
func (h *TaskHandlers) ListTasks(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id", "Project ID")
	if err != nil {
		return err
	}
	var req services.ListTasksRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.taskService.List(c.Request().Context(), id, projectID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "")
}

// UpdateTaskStatus handles PATCH /tasks/:id/status
func (h *TaskHandlers) UpdateTaskStatus(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id", "Task ID")
	if err != nil {
		return err
	}
	var req services.UpdateTaskStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.taskService.UpdateStatus(c.Request().Context(), id, taskID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, task, "Task status updated")
}

// UpdateTask handles PUT /tasks/:id
func (h *TaskHandlers) UpdateTask(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id", "Task ID")
	if err != nil {
		return err
	}
	var req services.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := h.taskService.Update(c.Request().Context(), id, taskID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, task, "Task updated successfully")
}

// DeleteTask handles DELETE /tasks/:id
func (h *TaskHandlers) DeleteTask(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := pathID(c, "id", "Task ID")
	if err != nil {
		return err
	}
	if err := h.taskService.Delete(c.Request().Context(), id, taskID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Task deleted successfully")
}
