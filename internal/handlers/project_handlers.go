package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"projectflow/internal/services"
)

type ProjectHandlers struct {
	projectService services.ProjectService
}

func NewProjectHandlers(projectService services.ProjectService) *ProjectHandlers {
	return &ProjectHandlers{projectService: projectService}
}

func (h *ProjectHandlers) CreateProject(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req services.CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project, err := h.projectService.Create(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, project, "Project created successfully")
}

func (h *ProjectHandlers) ListProjects(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req services.ListProjectsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.projectService.List(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, list, "")
}

func (h *ProjectHandlers) GetProject(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id", "Project ID")
	if err != nil {
		return err
	}
	project, err := h.projectService.Get(c.Request().Context(), id, projectID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project, "")
}

func (h *ProjectHandlers) UpdateProject(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id", "Project ID")
	if err != nil {
		return err
	}
	var req services.UpdateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project, err := h.projectService.Update(c.Request().Context(), id, projectID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, project, "Project updated successfully")
}

func (h *ProjectHandlers) DeleteProject(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, "id", "Project ID")
	if err != nil {
		return err
	}
	if err := h.projectService.Delete(c.Request().Context(), id, projectID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Project deleted successfully")
}
