package services

import (
	"context"
	"fmt"
	"strings"

	"erdiagram/internal/models"
)

type ProjectService struct {
	projects ProjectStore
	diagrams DiagramStore
}

func NewProjectService(projects ProjectStore, diagrams DiagramStore) *ProjectService {
	return &ProjectService{
		projects: projects,
		diagrams: diagrams,
	}
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateProjectRequest leaves nil fields unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("project name is required")
	}

	project := &models.Project{
		Name:        name,
		Description: req.Description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, notFound("project")
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("project name cannot be empty")
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = req.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, storeErr("project", err)
	}
	return project, nil
}

// DeleteProject removes the project together with its diagrams.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) error {
	id, err := parseID("project", projectID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return storeErr("project", err)
	}
	return nil
}

// ListDiagrams returns the diagram rows of a project without their graphs.
func (s *ProjectService) ListDiagrams(ctx context.Context, projectID string) ([]models.Diagram, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.diagrams.ListByProject(ctx, project.ID)
}
