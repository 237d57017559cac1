package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type AttributeService struct {
	attributes AttributeStore
	entities   EntityStore
	diagrams   DiagramStore
}

func NewAttributeService(attributes AttributeStore, entities EntityStore, diagrams DiagramStore) *AttributeService {
	return &AttributeService{
		attributes: attributes,
		entities:   entities,
		diagrams:   diagrams,
	}
}

// AttributeRequest is used for create and for full-replacement update.
// EntityID is required on create and ignored on update.
type AttributeRequest struct {
	EntityID        string           `json:"entityId"`
	Name            string           `json:"name" binding:"required"`
	DataType        diagram.DataType `json:"dataType"`
	IsPrimaryKey    bool             `json:"isPrimaryKey"`
	IsForeignKey    bool             `json:"isForeignKey"`
	IsUnique        bool             `json:"isUnique"`
	IsNullable      bool             `json:"isNullable"`
	IsAutoIncrement bool             `json:"isAutoIncrement"`
	IsUnsigned      bool             `json:"isUnsigned"`
	DefaultValue    *string          `json:"defaultValue,omitempty"`
	Comment         *string          `json:"comment,omitempty"`
}

func (req AttributeRequest) apply(a *models.Attribute) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("attribute name is required")
	}
	a.Name = name
	a.DataType = req.DataType
	a.IsPrimaryKey = req.IsPrimaryKey
	a.IsForeignKey = req.IsForeignKey
	a.IsUnique = req.IsUnique
	a.IsNullable = req.IsNullable
	a.IsAutoIncrement = req.IsAutoIncrement
	a.IsUnsigned = req.IsUnsigned
	a.DefaultValue = req.DefaultValue
	a.Comment = req.Comment
	a.Prepare()
	return nil
}

// CreateAttribute appends an attribute to an entity. A primary key is forced
// unique and not nullable.
func (s *AttributeService) CreateAttribute(ctx context.Context, req AttributeRequest) (*models.Attribute, error) {
	entityID, err := parseID("entity", req.EntityID)
	if err != nil {
		return nil, err
	}
	e, err := s.entity(ctx, entityID)
	if err != nil {
		return nil, err
	}

	a := &models.Attribute{EntityID: e.ID}
	if err := req.apply(a); err != nil {
		return nil, err
	}
	if err := s.attributes.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save attribute: %w", err)
	}

	staleSchema(ctx, s.diagrams, e.DiagramID)
	return a, nil
}

func (s *AttributeService) UpdateAttribute(ctx context.Context, attributeID string, req AttributeRequest) (*models.Attribute, error) {
	a, err := s.get(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if err := req.apply(a); err != nil {
		return nil, err
	}
	if err := s.attributes.Update(ctx, a); err != nil {
		return nil, storeErr("attribute", err)
	}

	s.stale(ctx, a.EntityID)
	return a, nil
}

func (s *AttributeService) DeleteAttribute(ctx context.Context, attributeID string) error {
	a, err := s.get(ctx, attributeID)
	if err != nil {
		return err
	}
	if err := s.attributes.Delete(ctx, a.ID); err != nil {
		return storeErr("attribute", err)
	}

	s.stale(ctx, a.EntityID)
	return nil
}

func (s *AttributeService) get(ctx context.Context, attributeID string) (*models.Attribute, error) {
	id, err := parseID("attribute", attributeID)
	if err != nil {
		return nil, err
	}
	a, err := s.attributes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attribute: %w", err)
	}
	if a == nil {
		return nil, notFound("attribute")
	}
	return a, nil
}

func (s *AttributeService) entity(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	e, err := s.entities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	if e == nil {
		return nil, notFound("entity")
	}
	return e, nil
}

func (s *AttributeService) stale(ctx context.Context, entityID uuid.UUID) {
	if e, err := s.entities.GetByID(ctx, entityID); err == nil && e != nil {
		staleSchema(ctx, s.diagrams, e.DiagramID)
	}
}
