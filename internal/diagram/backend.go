package diagram

import (
	"context"
	"log/slog"
)

// Backend is the persistence and schema-generation collaborator of a Store.
// internal/client implements it over the diagram REST API.
type Backend interface {
	GetDiagram(ctx context.Context, id string) (*Diagram, error)
	UpdateDiagram(ctx context.Context, id string, settings Settings) (*Diagram, error)
	UpdateDiagramLayout(ctx context.Context, id string, layout Layout) error

	CreateEntity(ctx context.Context, payload EntityPayload) (*Entity, error)
	UpdateEntity(ctx context.Context, id string, payload EntityPayload) (*Entity, error)
	DeleteEntity(ctx context.Context, id string) error

	CreateAttribute(ctx context.Context, payload AttributePayload) (*Attribute, error)
	UpdateAttribute(ctx context.Context, id string, payload AttributePayload) (*Attribute, error)
	DeleteAttribute(ctx context.Context, id string) error

	CreateRelationship(ctx context.Context, payload RelationshipPayload) (*Relationship, error)
	UpdateRelationship(ctx context.Context, id string, payload RelationshipPayload) (*Relationship, error)
	DeleteRelationship(ctx context.Context, id string) error

	GenerateSchema(ctx context.Context, diagramID string) (string, error)
	ApplySchema(ctx context.Context, diagramID, schemaCode string) (*Diagram, error)
	Preview(ctx context.Context, diagramID string) (string, error)
}

// EntityPayload carries entity fields to the backend. Nil fields are left
// unchanged on update.
type EntityPayload struct {
	DiagramID string       `json:"diagramId,omitempty"`
	Name      *string      `json:"name,omitempty"`
	Kind      *EntityKind  `json:"kind,omitempty"`
	Style     *EntityStyle `json:"style,omitempty"`
	Position  *Position    `json:"position,omitempty"`
}

type AttributePayload struct {
	EntityID        string   `json:"entityId,omitempty"`
	Name            string   `json:"name"`
	DataType        DataType `json:"dataType"`
	IsPrimaryKey    bool     `json:"isPrimaryKey"`
	IsForeignKey    bool     `json:"isForeignKey"`
	IsUnique        bool     `json:"isUnique"`
	IsNullable      bool     `json:"isNullable"`
	IsAutoIncrement bool     `json:"isAutoIncrement"`
	IsUnsigned      bool     `json:"isUnsigned"`
	DefaultValue    *string  `json:"defaultValue,omitempty"`
	Comment         *string  `json:"comment,omitempty"`
}

// RelationshipPayload carries relationship fields to the backend. Nil or
// empty fields are left unchanged on update.
type RelationshipPayload struct {
	DiagramID string             `json:"diagramId,omitempty"`
	Name      *string            `json:"name,omitempty"`
	Type      *RelationshipType  `json:"type,omitempty"`
	Entities  []Endpoint         `json:"entities,omitempty"`
	OnDelete  *ReferentialAction `json:"onDelete,omitempty"`
	OnUpdate  *ReferentialAction `json:"onUpdate,omitempty"`
	Style     *RelationshipStyle `json:"style,omitempty"`
	Position  *Position          `json:"position,omitempty"`
}

// Confirmer asks the user to confirm a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// AlwaysConfirm approves every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) bool { return true })

// Notifier surfaces user-visible outcomes of edit operations.
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Success(title, description string) {
	n.logger.Info(title, "detail", description)
}

func (n logNotifier) Error(title, description string) {
	n.logger.Error(title, "detail", description)
}
