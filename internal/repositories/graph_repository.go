package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"erdiagram/internal/models"
)

// GraphRepository reads and replaces the entity/relationship graph of a
// diagram as a whole.
type GraphRepository struct {
	pool *pgxpool.Pool
}

func NewGraphRepository(pool *pgxpool.Pool) *GraphRepository {
	return &GraphRepository{pool: pool}
}

// Load returns the entities of the diagram with their attributes and its
// relationships.
func (r *GraphRepository) Load(ctx context.Context, diagramID uuid.UUID) ([]models.Entity, []models.Relationship, error) {
	entities, err := NewEntityRepository(r.pool).ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, nil, fmt.Errorf("list entities: %w", err)
	}
	attrs, err := NewAttributeRepository(r.pool).ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, nil, fmt.Errorf("list attributes: %w", err)
	}
	for i := range entities {
		if a, ok := attrs[entities[i].ID]; ok {
			entities[i].Attributes = a
		}
	}
	rels, err := NewRelationshipRepository(r.pool).ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, nil, fmt.Errorf("list relationships: %w", err)
	}
	return entities, rels, nil
}

// Replace deletes the current graph of the diagram and inserts the given
// one in a single transaction. The stored schema text is set to schemaCode.
func (r *GraphRepository) Replace(ctx context.Context, diagramID uuid.UUID, entities []models.Entity, rels []models.Relationship, schemaCode string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		entityRepo := NewEntityRepository(tx)
		attrRepo := NewAttributeRepository(tx)
		relRepo := NewRelationshipRepository(tx)

		if err := entityRepo.DeleteByDiagram(ctx, diagramID); err != nil {
			return fmt.Errorf("clear entities: %w", err)
		}
		for i := range entities {
			e := &entities[i]
			e.DiagramID = diagramID
			if err := entityRepo.Create(ctx, e); err != nil {
				return fmt.Errorf("create entity %q: %w", e.Name, err)
			}
			for j := range e.Attributes {
				a := &e.Attributes[j]
				a.EntityID = e.ID
				if err := attrRepo.Create(ctx, a); err != nil {
					return fmt.Errorf("create attribute %q of %q: %w", a.Name, e.Name, err)
				}
			}
		}
		for i := range rels {
			rels[i].DiagramID = diagramID
			if err := relRepo.Create(ctx, &rels[i]); err != nil {
				return fmt.Errorf("create relationship %q: %w", rels[i].Name, err)
			}
		}
		if err := NewDiagramRepository(tx).SetSchemaCode(ctx, diagramID, schemaCode); err != nil {
			return fmt.Errorf("store schema: %w", err)
		}
		return nil
	})
}
