package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type ProjectService interface {
	CreateProject(ctx context.Context, req services.CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID string, req services.UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	ListDiagrams(ctx context.Context, projectID string) ([]models.Diagram, error)
}

type ProjectHandler struct {
	projectService ProjectService
}

func NewProjectHandler(projectService ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req services.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create project")
		return
	}

	responses.Success(c, http.StatusCreated, project, "Project created successfully")
}

// GetProject handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to get project")
		return
	}

	responses.Success(c, http.StatusOK, project, "Project retrieved successfully")
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to list projects")
		return
	}

	responses.Success(c, http.StatusOK, projects, "Projects retrieved successfully")
}

// UpdateProject handles PATCH /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req services.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, "Failed to update project")
		return
	}

	responses.Success(c, http.StatusOK, project, "Project updated successfully")
}

// DeleteProject handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Failed to delete project")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// ListDiagrams handles GET /api/v1/projects/:id/diagrams
func (h *ProjectHandler) ListDiagrams(c *gin.Context) {
	diagrams, err := h.projectService.ListDiagrams(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to list diagrams")
		return
	}

	responses.Success(c, http.StatusOK, diagrams, "Diagrams retrieved successfully")
}
