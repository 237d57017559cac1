package services

import (
	"context"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

// The store interfaces are implemented by the pgx repositories in
// internal/repositories. Getters return nil, nil when the row is missing.

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DiagramStore interface {
	Create(ctx context.Context, d *models.Diagram) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Diagram, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Diagram, error)
	Update(ctx context.Context, d *models.Diagram) error
	UpdateLayout(ctx context.Context, id uuid.UUID, layout diagram.Layout) error
	SetSchemaCode(ctx context.Context, id uuid.UUID, code string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GraphStore interface {
	Load(ctx context.Context, diagramID uuid.UUID) ([]models.Entity, []models.Relationship, error)
	Replace(ctx context.Context, diagramID uuid.UUID, entities []models.Entity, rels []models.Relationship, schemaCode string) error
}

type EntityStore interface {
	Create(ctx context.Context, e *models.Entity) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	Update(ctx context.Context, e *models.Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AttributeStore interface {
	Create(ctx context.Context, a *models.Attribute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Attribute, error)
	Update(ctx context.Context, a *models.Attribute) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RelationshipStore interface {
	Create(ctx context.Context, rel *models.Relationship) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Relationship, error)
	Update(ctx context.Context, rel *models.Relationship) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SchemaCache holds generated schema text by graph fingerprint.
type SchemaCache interface {
	Get(ctx context.Context, fingerprint string) (string, bool, error)
	Set(ctx context.Context, fingerprint, code string) error
}

// SchemaGenerator converts between a diagram graph and schema source text.
type SchemaGenerator interface {
	Generate(ctx context.Context, d *models.Diagram) (string, error)
	Parse(ctx context.Context, schemaCode string) (*ParsedGraph, error)
}
