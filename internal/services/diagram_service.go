package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type DiagramService struct {
	projects ProjectStore
	diagrams DiagramStore
	graph    GraphStore
}

func NewDiagramService(projects ProjectStore, diagrams DiagramStore, graph GraphStore) *DiagramService {
	return &DiagramService{
		projects: projects,
		diagrams: diagrams,
		graph:    graph,
	}
}

type CreateDiagramRequest struct {
	ProjectID   string `json:"projectId" binding:"required,uuid"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// UpdateDiagramRequest edits the diagram settings. Nil fields are left
// unchanged.
type UpdateDiagramRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
	Version     *int    `json:"version,omitempty"`
}

func (s *DiagramService) CreateDiagram(ctx context.Context, req CreateDiagramRequest) (*models.Diagram, error) {
	projectID, err := parseID("project", req.ProjectID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("diagram name is required")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, notFound("project")
	}

	d := &models.Diagram{
		ProjectID:     project.ID,
		Name:          name,
		Description:   req.Description,
		IsPublic:      req.IsPublic,
		Entities:      []models.Entity{},
		Relationships: []models.Relationship{},
	}
	if err := s.diagrams.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save diagram: %w", err)
	}
	return d, nil
}

// GetDiagram returns the full aggregate: settings, graph, layout and the
// cached schema text.
func (s *DiagramService) GetDiagram(ctx context.Context, diagramID string) (*models.Diagram, error) {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return nil, err
	}
	return loadDiagram(ctx, s.diagrams, s.graph, id)
}

func (s *DiagramService) UpdateDiagram(ctx context.Context, diagramID string, req UpdateDiagramRequest) (*models.Diagram, error) {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return nil, err
	}
	d, err := s.diagrams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagram: %w", err)
	}
	if d == nil {
		return nil, notFound("diagram")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("diagram name cannot be empty")
		}
		d.Name = name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.IsPublic != nil {
		d.IsPublic = *req.IsPublic
	}
	if req.Version != nil {
		if *req.Version < 1 {
			return nil, invalid("version must be at least 1")
		}
		d.Version = *req.Version
	}

	if err := s.diagrams.Update(ctx, d); err != nil {
		return nil, storeErr("diagram", err)
	}
	return loadDiagram(ctx, s.diagrams, s.graph, id)
}

func (s *DiagramService) UpdateLayout(ctx context.Context, diagramID string, layout diagram.Layout) error {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return err
	}
	if layout.Viewport != nil && layout.Viewport.Zoom <= 0 {
		return invalid("viewport zoom must be positive")
	}
	if layout.Nodes == nil {
		layout.Nodes = []diagram.LayoutNode{}
	}
	if layout.Edges == nil {
		layout.Edges = []diagram.LayoutEdge{}
	}
	if err := s.diagrams.UpdateLayout(ctx, id, layout); err != nil {
		return storeErr("diagram", err)
	}
	return nil
}

func (s *DiagramService) DeleteDiagram(ctx context.Context, diagramID string) error {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return err
	}
	if err := s.diagrams.Delete(ctx, id); err != nil {
		return storeErr("diagram", err)
	}
	return nil
}

func loadDiagram(ctx context.Context, diagrams DiagramStore, graph GraphStore, id uuid.UUID) (*models.Diagram, error) {
	d, err := diagrams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagram: %w", err)
	}
	if d == nil {
		return nil, notFound("diagram")
	}

	entities, rels, err := graph.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load diagram graph: %w", err)
	}
	d.Entities = entities
	d.Relationships = rels
	return d, nil
}
