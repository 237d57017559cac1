package diagram

import (
	"context"
	"fmt"
	"strings"
)

// AttributeInput is the attribute form. A zero DataType means string.
type AttributeInput struct {
	Name            string   `json:"name" validate:"required"`
	DataType        DataType `json:"dataType"`
	IsPrimaryKey    bool     `json:"isPrimaryKey"`
	IsForeignKey    bool     `json:"isForeignKey"`
	IsUnique        bool     `json:"isUnique"`
	IsNullable      bool     `json:"isNullable"`
	IsAutoIncrement bool     `json:"isAutoIncrement"`
	IsUnsigned      bool     `json:"isUnsigned"`
	DefaultValue    *string  `json:"defaultValue"`
	Comment         *string  `json:"comment"`
}

// DefaultAttributeInput returns the values the attribute form starts with.
func DefaultAttributeInput() AttributeInput {
	return AttributeInput{DataType: TypeString, IsNullable: true}
}

func (in *AttributeInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.DataType.IsZero() {
		in.DataType = TypeString
	}
	if in.IsPrimaryKey {
		in.IsNullable = false
		in.IsUnique = true
	}
}

func (in AttributeInput) payload(entityID string) AttributePayload {
	return AttributePayload{
		EntityID:        entityID,
		Name:            in.Name,
		DataType:        in.DataType,
		IsPrimaryKey:    in.IsPrimaryKey,
		IsForeignKey:    in.IsForeignKey,
		IsUnique:        in.IsUnique,
		IsNullable:      in.IsNullable,
		IsAutoIncrement: in.IsAutoIncrement,
		IsUnsigned:      in.IsUnsigned,
		DefaultValue:    cloneString(in.DefaultValue),
		Comment:         cloneString(in.Comment),
	}
}

func (in AttributeInput) apply(a *Attribute) {
	a.Name = in.Name
	a.DataType = in.DataType
	a.IsPrimaryKey = in.IsPrimaryKey
	a.IsForeignKey = in.IsForeignKey
	a.IsUnique = in.IsUnique
	a.IsNullable = in.IsNullable
	a.IsAutoIncrement = in.IsAutoIncrement
	a.IsUnsigned = in.IsUnsigned
	a.DefaultValue = cloneString(in.DefaultValue)
	a.Comment = cloneString(in.Comment)
}

// CreateAttribute appends a new attribute to the entity's list. A primary
// key is always stored as unique and not nullable.
func (s *Store) CreateAttribute(ctx context.Context, entityID string, in AttributeInput) (*Attribute, error) {
	var created Attribute
	err := s.run(ctx, func(ctx context.Context) error {
		in.normalize()
		if err := s.check(in); err != nil {
			return s.fail("Creation failed", err.Error(), err)
		}
		if _, ok := s.Node(entityID); !ok {
			err := fmt.Errorf("entity %s: %w", entityID, ErrNotFound)
			return s.fail("Creation failed", "Failed to create new attribute", err)
		}

		attr, err := s.backend.CreateAttribute(ctx, in.payload(entityID))
		if err != nil {
			return s.fail("Creation failed", "Failed to create new attribute", &PersistenceError{Op: "create attribute", Err: err})
		}
		created = *attr
		created.EntityID = entityID
		created.ApplyKeyConstraints()

		s.mu.Lock()
		if i := s.nodeIndex(entityID); i >= 0 {
			s.nodes[i].Data.Attributes = append(s.nodes[i].Data.Attributes, created)
		}
		_ = s.transition(EventAttributeDone)
		s.mu.Unlock()

		s.notifier.Success("Attribute created", "New attribute has been created successfully")
		s.regenerateSchema(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := cloneAttributes([]Attribute{created})[0]
	return &out, nil
}

// UpdateAttribute replaces the attribute in place, keeping its position in
// the list. The previous values are restored if the backend rejects it.
func (s *Store) UpdateAttribute(ctx context.Context, entityID, attributeID string, in AttributeInput) error {
	return s.run(ctx, func(ctx context.Context) error {
		in.normalize()
		if err := s.check(in); err != nil {
			return s.fail("Update failed", err.Error(), err)
		}

		s.mu.Lock()
		ni, ai := s.attributeIndex(entityID, attributeID)
		if ai < 0 {
			s.mu.Unlock()
			err := fmt.Errorf("attribute %s of entity %s: %w", attributeID, entityID, ErrNotFound)
			return s.fail("Update failed", "Failed to update attribute", err)
		}
		previous := cloneAttributes(s.nodes[ni].Data.Attributes[ai : ai+1])[0]
		in.apply(&s.nodes[ni].Data.Attributes[ai])
		s.mu.Unlock()

		if _, err := s.backend.UpdateAttribute(ctx, attributeID, in.payload(entityID)); err != nil {
			s.mu.Lock()
			if ni, ai := s.attributeIndex(entityID, attributeID); ai >= 0 {
				s.nodes[ni].Data.Attributes[ai] = previous
			}
			s.mu.Unlock()
			return s.fail("Update failed", "Failed to update attribute", &PersistenceError{Op: "update attribute", Err: err})
		}

		s.mu.Lock()
		_ = s.transition(EventAttributeDone)
		s.mu.Unlock()

		s.notifier.Success("Attribute updated", "Attribute has been updated successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}

// DeleteAttribute removes the attribute after the user confirms.
func (s *Store) DeleteAttribute(ctx context.Context, entityID, attributeID string) error {
	return s.run(ctx, func(ctx context.Context) error {
		s.mu.RLock()
		_, ai := s.attributeIndex(entityID, attributeID)
		s.mu.RUnlock()
		if ai < 0 {
			err := fmt.Errorf("attribute %s of entity %s: %w", attributeID, entityID, ErrNotFound)
			return s.fail("Delete failed", "Failed to delete attribute", err)
		}
		if !s.confirmer.Confirm(ctx, "Are you sure you want to delete this attribute?") {
			return ErrCancelled
		}

		if err := s.backend.DeleteAttribute(ctx, attributeID); err != nil {
			return s.fail("Delete failed", "Failed to delete attribute", &PersistenceError{Op: "delete attribute", Err: err})
		}

		s.mu.Lock()
		if ni, ai := s.attributeIndex(entityID, attributeID); ai >= 0 {
			attrs := s.nodes[ni].Data.Attributes
			s.nodes[ni].Data.Attributes = append(attrs[:ai], attrs[ai+1:]...)
		}
		s.mu.Unlock()

		s.notifier.Success("Attribute deleted", "Attribute has been deleted successfully")
		s.regenerateSchema(ctx)
		return nil
	})
}

// attributeIndex must be called with s.mu held. ai is -1 when either the
// entity or the attribute is missing.
func (s *Store) attributeIndex(entityID, attributeID string) (ni, ai int) {
	ni = s.nodeIndex(entityID)
	if ni < 0 {
		return -1, -1
	}
	for i, a := range s.nodes[ni].Data.Attributes {
		if a.ID == attributeID {
			return ni, i
		}
	}
	return ni, -1
}
