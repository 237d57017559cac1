package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type EntityService struct {
	entities   EntityStore
	attributes AttributeStore
	diagrams   DiagramStore
}

func NewEntityService(entities EntityStore, attributes AttributeStore, diagrams DiagramStore) *EntityService {
	return &EntityService{
		entities:   entities,
		attributes: attributes,
		diagrams:   diagrams,
	}
}

type CreateEntityRequest struct {
	DiagramID string               `json:"diagramId" binding:"required,uuid"`
	Name      string               `json:"name" binding:"required"`
	Kind      diagram.EntityKind   `json:"kind"`
	Style     *diagram.EntityStyle `json:"style,omitempty"`
	Position  *diagram.Position    `json:"position,omitempty"`
}

// UpdateEntityRequest leaves nil fields unchanged. A position-only update
// is a canvas move and keeps the cached schema.
type UpdateEntityRequest struct {
	Name     *string              `json:"name,omitempty"`
	Kind     *diagram.EntityKind  `json:"kind,omitempty"`
	Style    *diagram.EntityStyle `json:"style,omitempty"`
	Position *diagram.Position    `json:"position,omitempty"`
}

func validKind(k diagram.EntityKind) bool {
	switch k {
	case diagram.KindRegular, diagram.KindWeak, diagram.KindAssociative:
		return true
	}
	return false
}

func (s *EntityService) CreateEntity(ctx context.Context, req CreateEntityRequest) (*models.Entity, error) {
	diagramID, err := parseID("diagram", req.DiagramID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("entity name is required")
	}
	if req.Kind != "" && !validKind(req.Kind) {
		return nil, invalid("unknown entity kind %q", req.Kind)
	}

	d, err := s.diagrams.GetByID(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagram: %w", err)
	}
	if d == nil {
		return nil, notFound("diagram")
	}

	e := &models.Entity{
		DiagramID: diagramID,
		Name:      name,
		Kind:      req.Kind,
	}
	if req.Style != nil {
		e.Style = *req.Style
	}
	if req.Position != nil {
		e.Position = *req.Position
	}
	if err := s.entities.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	staleSchema(ctx, s.diagrams, diagramID)
	return e, nil
}

// GetEntity returns the entity with its attributes in list order.
func (s *EntityService) GetEntity(ctx context.Context, entityID string) (*models.Entity, error) {
	id, err := parseID("entity", entityID)
	if err != nil {
		return nil, err
	}
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	attrs, err := s.attributes.ListByEntity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	e.Attributes = attrs
	return e, nil
}

func (s *EntityService) UpdateEntity(ctx context.Context, entityID string, req UpdateEntityRequest) (*models.Entity, error) {
	e, err := s.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	structural := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("entity name cannot be empty")
		}
		structural = structural || name != e.Name
		e.Name = name
	}
	if req.Kind != nil {
		if !validKind(*req.Kind) {
			return nil, invalid("unknown entity kind %q", *req.Kind)
		}
		structural = structural || *req.Kind != e.Kind
		e.Kind = *req.Kind
	}
	if req.Style != nil {
		e.Style = *req.Style
	}
	if req.Position != nil {
		e.Position = *req.Position
	}

	if err := s.entities.Update(ctx, e); err != nil {
		return nil, storeErr("entity", err)
	}
	if structural {
		staleSchema(ctx, s.diagrams, e.DiagramID)
	}
	return e, nil
}

// DeleteEntity removes the entity, its attributes and every relationship
// that references it.
func (s *EntityService) DeleteEntity(ctx context.Context, entityID string) error {
	id, err := parseID("entity", entityID)
	if err != nil {
		return err
	}
	e, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.entities.Delete(ctx, id); err != nil {
		return storeErr("entity", err)
	}
	staleSchema(ctx, s.diagrams, e.DiagramID)
	return nil
}

func (s *EntityService) get(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	e, err := s.entities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if e == nil {
		return nil, notFound("entity")
	}
	return e, nil
}
