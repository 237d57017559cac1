package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type RelationshipService struct {
	relationships RelationshipStore
	entities      EntityStore
	diagrams      DiagramStore
}

func NewRelationshipService(relationships RelationshipStore, entities EntityStore, diagrams DiagramStore) *RelationshipService {
	return &RelationshipService{
		relationships: relationships,
		entities:      entities,
		diagrams:      diagrams,
	}
}

// CreateRelationshipRequest has exactly two endpoints, source first. The
// type is always derived from the endpoint cardinalities.
type CreateRelationshipRequest struct {
	DiagramID string                     `json:"diagramId" binding:"required,uuid"`
	Name      string                     `json:"name" binding:"required"`
	Entities  []diagram.Endpoint         `json:"entities" binding:"required"`
	OnDelete  diagram.ReferentialAction  `json:"onDelete"`
	OnUpdate  diagram.ReferentialAction  `json:"onUpdate"`
	Style     *diagram.RelationshipStyle `json:"style,omitempty"`
	Position  *diagram.Position          `json:"position,omitempty"`
}

// UpdateRelationshipRequest leaves nil or empty fields unchanged.
type UpdateRelationshipRequest struct {
	Name     *string                    `json:"name,omitempty"`
	Entities []diagram.Endpoint         `json:"entities,omitempty"`
	OnDelete *diagram.ReferentialAction `json:"onDelete,omitempty"`
	OnUpdate *diagram.ReferentialAction `json:"onUpdate,omitempty"`
	Style    *diagram.RelationshipStyle `json:"style,omitempty"`
	Position *diagram.Position          `json:"position,omitempty"`
}

func validCardinality(c diagram.Cardinality) bool {
	switch c {
	case diagram.CardinalityZeroOrOne, diagram.CardinalityOne,
		diagram.CardinalityZeroOrMany, diagram.CardinalityOneOrMany, diagram.CardinalityMany:
		return true
	}
	return false
}

func validParticipation(p diagram.Participation) bool {
	return p == "" || p == diagram.ParticipationPartial || p == diagram.ParticipationTotal
}

func validAction(a diagram.ReferentialAction) bool {
	switch a {
	case "", diagram.ActionNoAction, diagram.ActionRestrict, diagram.ActionCascade,
		diagram.ActionSetNull, diagram.ActionSetDefault:
		return true
	}
	return false
}

// checkEndpoints validates the endpoint list and returns the two entities it
// connects. Both must exist in diagramID and be distinct.
func (s *RelationshipService) checkEndpoints(ctx context.Context, diagramID uuid.UUID, eps []diagram.Endpoint) ([2]*models.Entity, error) {
	var ends [2]*models.Entity
	if len(eps) != 2 {
		return ends, invalid("a relationship needs exactly two entities, got %d", len(eps))
	}
	for i, ep := range eps {
		if !validCardinality(ep.Cardinality) {
			return ends, invalid("invalid cardinality %q", ep.Cardinality)
		}
		if !validParticipation(ep.Participation) {
			return ends, invalid("invalid participation %q", ep.Participation)
		}
		id, err := parseID("entity", ep.EntityID)
		if err != nil {
			return ends, err
		}
		e, err := s.entities.GetByID(ctx, id)
		if err != nil {
			return ends, fmt.Errorf("failed to get entity: %w", err)
		}
		if e == nil || e.DiagramID != diagramID {
			return ends, invalid("entity %s is not part of diagram %s", id, diagramID)
		}
		ends[i] = e
	}
	if ends[0].ID == ends[1].ID {
		return ends, invalid("a relationship cannot connect an entity to itself")
	}
	return ends, nil
}

func checkActions(actions ...diagram.ReferentialAction) error {
	for _, a := range actions {
		if !validAction(a) {
			return invalid("invalid referential action %q", a)
		}
	}
	return nil
}

func (s *RelationshipService) CreateRelationship(ctx context.Context, req CreateRelationshipRequest) (*models.Relationship, error) {
	diagramID, err := parseID("diagram", req.DiagramID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("relationship name is required")
	}
	if err := checkActions(req.OnDelete, req.OnUpdate); err != nil {
		return nil, err
	}
	ends, err := s.checkEndpoints(ctx, diagramID, req.Entities)
	if err != nil {
		return nil, err
	}

	rel := &models.Relationship{
		DiagramID: diagramID,
		Name:      name,
		Entities:  append([]diagram.Endpoint(nil), req.Entities...),
		OnDelete:  req.OnDelete,
		OnUpdate:  req.OnUpdate,
		Position:  diagram.Midpoint(ends[0].Position, ends[1].Position),
	}
	if req.Style != nil {
		rel.Style = *req.Style
	}
	if req.Position != nil {
		rel.Position = *req.Position
	}
	if err := s.relationships.Create(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to save relationship: %w", err)
	}

	staleSchema(ctx, s.diagrams, diagramID)
	return rel, nil
}

func (s *RelationshipService) GetRelationship(ctx context.Context, relationshipID string) (*models.Relationship, error) {
	id, err := parseID("relationship", relationshipID)
	if err != nil {
		return nil, err
	}
	rel, err := s.relationships.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	if rel == nil {
		return nil, notFound("relationship")
	}
	return rel, nil
}

// UpdateRelationship applies a partial update. New endpoints without a
// position move the relationship to their midpoint.
func (s *RelationshipService) UpdateRelationship(ctx context.Context, relationshipID string, req UpdateRelationshipRequest) (*models.Relationship, error) {
	rel, err := s.GetRelationship(ctx, relationshipID)
	if err != nil {
		return nil, err
	}

	structural := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("relationship name cannot be empty")
		}
		structural = structural || name != rel.Name
		rel.Name = name
	}
	if len(req.Entities) > 0 {
		ends, err := s.checkEndpoints(ctx, rel.DiagramID, req.Entities)
		if err != nil {
			return nil, err
		}
		structural = true
		rel.Entities = append([]diagram.Endpoint(nil), req.Entities...)
		rel.Position = diagram.Midpoint(ends[0].Position, ends[1].Position)
	}
	if req.OnDelete != nil {
		if err := checkActions(*req.OnDelete); err != nil {
			return nil, err
		}
		structural = structural || *req.OnDelete != rel.OnDelete
		rel.OnDelete = *req.OnDelete
	}
	if req.OnUpdate != nil {
		if err := checkActions(*req.OnUpdate); err != nil {
			return nil, err
		}
		structural = structural || *req.OnUpdate != rel.OnUpdate
		rel.OnUpdate = *req.OnUpdate
	}
	if req.Style != nil {
		rel.Style = *req.Style
	}
	if req.Position != nil {
		rel.Position = *req.Position
	}

	if err := s.relationships.Update(ctx, rel); err != nil {
		return nil, storeErr("relationship", err)
	}
	if structural {
		staleSchema(ctx, s.diagrams, rel.DiagramID)
	}
	return rel, nil
}

func (s *RelationshipService) DeleteRelationship(ctx context.Context, relationshipID string) error {
	rel, err := s.GetRelationship(ctx, relationshipID)
	if err != nil {
		return err
	}
	if err := s.relationships.Delete(ctx, rel.ID); err != nil {
		return storeErr("relationship", err)
	}

	staleSchema(ctx, s.diagrams, rel.DiagramID)
	return nil
}
