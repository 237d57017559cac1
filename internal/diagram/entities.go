package diagram

import (
	"context"
	"fmt"
	"strings"
)

// EntityInput is the editable part of an entity. An empty Kind means regular.
type EntityInput struct {
	Name  string       `json:"name" validate:"required"`
	Kind  EntityKind   `json:"kind" validate:"omitempty,oneof=regular weak associative"`
	Style *EntityStyle `json:"style"`
}

func (in *EntityInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Kind == "" {
		in.Kind = KindRegular
	}
}

// CreateEntity persists a new entity at pos, adds it to the canvas with an
// empty attribute list and selects it.
func (s *Store) CreateEntity(ctx context.Context, in EntityInput, pos Position) (*Node, error) {
	var created Node
	err := s.run(ctx, func(ctx context.Context) error {
		in.normalize()
		if err := s.check(in); err != nil {
			return s.fail("Creation failed", err.Error(), err)
		}
		style := EntityStyle{}
		if in.Style != nil {
			style = *in.Style
		}

		entity, err := s.backend.CreateEntity(ctx, EntityPayload{
			DiagramID: s.diagramID,
			Name:      &in.Name,
			Kind:      &in.Kind,
			Style:     &style,
			Position:  &pos,
		})
		if err != nil {
			return s.fail("Creation failed", "Failed to create new entity", &PersistenceError{Op: "create entity", Err: err})
		}

		node := nodeFromEntity(*entity)
		node.Data.Attributes = []Attribute{}

		s.mu.Lock()
		s.nodes = append(s.nodes, node)
		s.selectedEdge = ""
		s.selectedNode = node.ID
		s.dropPosition = nil
		_ = s.transition(EventEntityCreated)
		s.mu.Unlock()

		created = node.clone()
		s.notifier.Success("Entity created", "New entity has been created successfully")
		s.regenerateSchema(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEntity applies name, kind and style to the node immediately and
// restores the previous values if the backend rejects the change.
func (s *Store) UpdateEntity(ctx context.Context, id string, in EntityInput) error {
	return s.run(ctx, func(ctx context.Context) error {
		in.normalize()
		if err := s.check(in); err != nil {
			return s.fail("Update failed", err.Error(), err)
		}

		s.mu.Lock()
		i := s.nodeIndex(id)
		if i < 0 {
			s.mu.Unlock()
			err := fmt.Errorf("entity %s: %w", id, ErrNotFound)
			return s.fail("Update failed", "Failed to update entity", err)
		}
		previous := s.nodes[i].Data
		style := previous.Style
		if in.Style != nil {
			style = *in.Style
		}
		s.nodes[i].Data.Name = in.Name
		s.nodes[i].Data.Kind = in.Kind
		s.nodes[i].Data.Style = style
		s.mu.Unlock()

		_, err := s.backend.UpdateEntity(ctx, id, EntityPayload{
			Name:  &in.Name,
			Kind:  &in.Kind,
			Style: &style,
		})
		if err != nil {
			s.mu.Lock()
			if i := s.nodeIndex(id); i >= 0 {
				s.nodes[i].Data.Name = previous.Name
				s.nodes[i].Data.Kind = previous.Kind
				s.nodes[i].Data.Style = previous.Style
			}
			s.mu.Unlock()
			return s.fail("Update failed", "Failed to update entity", &PersistenceError{Op: "update entity", Err: err})
		}

		s.notifier.Success("Entity updated", "Entity has been updated successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}

// DeleteEntity removes the entity, its attributes and every relationship
// attached to it once the user confirms. The sidebar closes only when the
// selection was among the removed items.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	return s.run(ctx, func(ctx context.Context) error {
		if _, ok := s.Node(id); !ok {
			err := fmt.Errorf("entity %s: %w", id, ErrNotFound)
			return s.fail("Delete failed", "Failed to delete entity", err)
		}
		if !s.confirmer.Confirm(ctx, "Are you sure you want to delete this entity? This will also delete all its attributes.") {
			return ErrCancelled
		}

		if err := s.backend.DeleteEntity(ctx, id); err != nil {
			return s.fail("Delete failed", "Failed to delete entity", &PersistenceError{Op: "delete entity", Err: err})
		}

		s.mu.Lock()
		if i := s.nodeIndex(id); i >= 0 {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
		}
		affected := s.selectedNode == id
		kept := s.edges[:0]
		for _, e := range s.edges {
			if e.Source == id || e.Target == id {
				if s.selectedEdge == e.ID {
					s.selectedEdge = ""
					affected = true
				}
				continue
			}
			kept = append(kept, e)
		}
		s.edges = kept
		if s.selectedNode == id {
			s.selectedNode = ""
		}
		if affected {
			_ = s.transition(EventDeleted)
		}
		s.mu.Unlock()

		s.notifier.Success("Entity deleted", "Entity has been deleted successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}
