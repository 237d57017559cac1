package diagram

import (
	"context"
	"fmt"
	"strings"
)

// RelationshipInput is the relationship form. The relationship type is not
// part of it: it is always derived from the two cardinalities.
type RelationshipInput struct {
	Name                string             `json:"name" validate:"required"`
	SourceID            string             `json:"sourceId" validate:"required"`
	TargetID            string             `json:"targetId" validate:"required,nefield=SourceID"`
	SourceRole          string             `json:"sourceRole"`
	TargetRole          string             `json:"targetRole"`
	SourceCardinality   Cardinality        `json:"sourceCardinality" validate:"oneof=0..1 1 0..n 1..n n"`
	TargetCardinality   Cardinality        `json:"targetCardinality" validate:"oneof=0..1 1 0..n 1..n n"`
	SourceParticipation Participation      `json:"sourceParticipation" validate:"oneof=partial total"`
	TargetParticipation Participation      `json:"targetParticipation" validate:"oneof=partial total"`
	OnDelete            ReferentialAction  `json:"onDelete" validate:"oneof='NO ACTION' RESTRICT CASCADE 'SET NULL' 'SET DEFAULT'"`
	OnUpdate            ReferentialAction  `json:"onUpdate" validate:"oneof='NO ACTION' RESTRICT CASCADE 'SET NULL' 'SET DEFAULT'"`
	Style               *RelationshipStyle `json:"style"`
}

// DefaultRelationshipInput returns the values the relationship form starts with.
func DefaultRelationshipInput() RelationshipInput {
	style := DefaultRelationshipStyle
	return RelationshipInput{
		SourceCardinality:   CardinalityOne,
		TargetCardinality:   CardinalityMany,
		SourceParticipation: ParticipationPartial,
		TargetParticipation: ParticipationPartial,
		OnDelete:            ActionNoAction,
		OnUpdate:            ActionNoAction,
		Style:               &style,
	}
}

func (in *RelationshipInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.SourceID = strings.TrimSpace(in.SourceID)
	in.TargetID = strings.TrimSpace(in.TargetID)
	def := DefaultRelationshipInput()
	if in.SourceCardinality == "" {
		in.SourceCardinality = def.SourceCardinality
	}
	if in.TargetCardinality == "" {
		in.TargetCardinality = def.TargetCardinality
	}
	if in.SourceParticipation == "" {
		in.SourceParticipation = def.SourceParticipation
	}
	if in.TargetParticipation == "" {
		in.TargetParticipation = def.TargetParticipation
	}
	if in.OnDelete == "" {
		in.OnDelete = def.OnDelete
	}
	if in.OnUpdate == "" {
		in.OnUpdate = def.OnUpdate
	}
	if in.Style == nil {
		in.Style = def.Style
	}
}

func (in RelationshipInput) endpoints() []Endpoint {
	return []Endpoint{
		{
			EntityID:      in.SourceID,
			Role:          in.SourceRole,
			Cardinality:   in.SourceCardinality,
			Participation: in.SourceParticipation,
		},
		{
			EntityID:      in.TargetID,
			Role:          in.TargetRole,
			Cardinality:   in.TargetCardinality,
			Participation: in.TargetParticipation,
		},
	}
}

// RelationshipInputFromEdge fills the form from an existing edge.
func RelationshipInputFromEdge(e Edge) RelationshipInput {
	in := RelationshipInput{
		Name:     e.Data.Name,
		SourceID: e.Source,
		TargetID: e.Target,
		OnDelete: e.Data.OnDelete,
		OnUpdate: e.Data.OnUpdate,
	}
	style := e.Data.Style
	in.Style = &style
	if len(e.Data.Entities) >= 2 {
		src, dst := e.Data.Entities[0], e.Data.Entities[1]
		in.SourceRole, in.TargetRole = src.Role, dst.Role
		in.SourceCardinality, in.TargetCardinality = src.Cardinality, dst.Cardinality
		in.SourceParticipation, in.TargetParticipation = src.Participation, dst.Participation
	}
	return in
}

// prepare normalizes and validates in and returns the midpoint of its two
// endpoint entities.
func (s *Store) prepare(in *RelationshipInput) (Position, error) {
	in.normalize()
	if err := s.check(in); err != nil {
		return Position{}, err
	}
	src, ok := s.nodePosition(in.SourceID)
	if !ok {
		return Position{}, &ValidationError{Field: "sourceId", Reason: fmt.Sprintf("unknown entity %q", in.SourceID)}
	}
	dst, ok := s.nodePosition(in.TargetID)
	if !ok {
		return Position{}, &ValidationError{Field: "targetId", Reason: fmt.Sprintf("unknown entity %q", in.TargetID)}
	}
	return Midpoint(src, dst), nil
}

// CreateRelationship persists a relationship between two distinct entities,
// places it at their midpoint and selects it.
func (s *Store) CreateRelationship(ctx context.Context, in RelationshipInput) (*Edge, error) {
	var created Edge
	err := s.run(ctx, func(ctx context.Context) error {
		pos, err := s.prepare(&in)
		if err != nil {
			return s.fail("Creation failed", err.Error(), err)
		}
		typ := DeriveType(in.SourceCardinality, in.TargetCardinality)

		rel, err := s.backend.CreateRelationship(ctx, RelationshipPayload{
			DiagramID: s.diagramID,
			Name:      &in.Name,
			Type:      &typ,
			Entities:  in.endpoints(),
			OnDelete:  &in.OnDelete,
			OnUpdate:  &in.OnUpdate,
			Style:     in.Style,
			Position:  &pos,
		})
		if err != nil {
			return s.fail("Creation failed", "Failed to create new relationship", &PersistenceError{Op: "create relationship", Err: err})
		}

		edge, ok := edgeFromRelationship(*rel)
		if !ok {
			edge, _ = edgeFromRelationship(Relationship{
				ID:       rel.ID,
				Name:     in.Name,
				Type:     typ,
				Entities: in.endpoints(),
				OnDelete: in.OnDelete,
				OnUpdate: in.OnUpdate,
				Style:    *in.Style,
			})
		}
		edge.Position = pos
		edge.Data.Type = typ

		s.mu.Lock()
		s.edges = append(s.edges, edge)
		s.selectedNode = ""
		s.selectedEdge = edge.ID
		_ = s.transition(EventRelationshipCreated)
		s.mu.Unlock()

		created = edge.clone()
		s.notifier.Success("Relationship created", "New relationship has been created successfully")
		s.regenerateSchema(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRelationship re-derives the type, replaces both endpoints and moves
// the edge to the midpoint of its endpoints. The edge is updated
// immediately and restored if the backend rejects the change. On success the
// selection is cleared and the sidebar closes.
func (s *Store) UpdateRelationship(ctx context.Context, id string, in RelationshipInput) error {
	return s.run(ctx, func(ctx context.Context) error {
		pos, err := s.prepare(&in)
		if err != nil {
			return s.fail("Update failed", err.Error(), err)
		}
		typ := DeriveType(in.SourceCardinality, in.TargetCardinality)

		s.mu.Lock()
		i := s.edgeIndex(id)
		if i < 0 {
			s.mu.Unlock()
			err := fmt.Errorf("relationship %s: %w", id, ErrNotFound)
			return s.fail("Update failed", "Failed to update relationship", err)
		}
		previous := s.edges[i].clone()
		s.edges[i].Source = in.SourceID
		s.edges[i].Target = in.TargetID
		s.edges[i].Position = pos
		s.edges[i].Data = EdgeData{
			Name:     in.Name,
			Type:     typ,
			Entities: in.endpoints(),
			OnDelete: in.OnDelete,
			OnUpdate: in.OnUpdate,
			Style:    *in.Style,
		}
		s.mu.Unlock()

		_, err = s.backend.UpdateRelationship(ctx, id, RelationshipPayload{
			Name:     &in.Name,
			Type:     &typ,
			Entities: in.endpoints(),
			OnDelete: &in.OnDelete,
			OnUpdate: &in.OnUpdate,
			Style:    in.Style,
			Position: &pos,
		})
		if err != nil {
			s.mu.Lock()
			if i := s.edgeIndex(id); i >= 0 {
				s.edges[i] = previous
			}
			s.mu.Unlock()
			return s.fail("Update failed", "Failed to update relationship", &PersistenceError{Op: "update relationship", Err: err})
		}

		s.mu.Lock()
		s.clearSelection()
		_ = s.transition(EventRelationshipClosed)
		s.mu.Unlock()

		s.notifier.Success("Relationship updated", "Relationship has been updated successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}

// DeleteRelationship removes the edge after the user confirms. The sidebar
// closes only when the edge was selected.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	return s.run(ctx, func(ctx context.Context) error {
		if _, ok := s.Edge(id); !ok {
			err := fmt.Errorf("relationship %s: %w", id, ErrNotFound)
			return s.fail("Delete failed", "Failed to delete relationship", err)
		}
		if !s.confirmer.Confirm(ctx, "Are you sure you want to delete this relationship?") {
			return ErrCancelled
		}

		if err := s.backend.DeleteRelationship(ctx, id); err != nil {
			return s.fail("Delete failed", "Failed to delete relationship", &PersistenceError{Op: "delete relationship", Err: err})
		}

		s.mu.Lock()
		if i := s.edgeIndex(id); i >= 0 {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
		}
		if s.selectedEdge == id {
			s.selectedEdge = ""
			_ = s.transition(EventDeleted)
		}
		s.mu.Unlock()

		s.notifier.Success("Relationship deleted", "Relationship has been deleted successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}
