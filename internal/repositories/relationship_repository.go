package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type RelationshipRepository struct {
	db DBTX
}

func NewRelationshipRepository(db DBTX) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

const relationshipColumns = `id, diagram_id, name, type,
	source_entity_id, source_role, source_cardinality, source_participation,
	target_entity_id, target_role, target_cardinality, target_participation,
	on_delete, on_update, style, position_x, position_y`

func scanRelationship(row pgx.Row) (*models.Relationship, error) {
	var (
		rel              models.Relationship
		sourceID         uuid.UUID
		targetID         uuid.UUID
		source, target   diagram.Endpoint
		onDelete, onUpdt string
	)
	err := row.Scan(
		&rel.ID,
		&rel.DiagramID,
		&rel.Name,
		&rel.Type,
		&sourceID,
		&source.Role,
		&source.Cardinality,
		&source.Participation,
		&targetID,
		&target.Role,
		&target.Cardinality,
		&target.Participation,
		&onDelete,
		&onUpdt,
		&rel.Style,
		&rel.Position.X,
		&rel.Position.Y,
	)
	if err != nil {
		return nil, err
	}
	source.EntityID = sourceID.String()
	target.EntityID = targetID.String()
	rel.Entities = []diagram.Endpoint{source, target}
	rel.OnDelete = diagram.ReferentialAction(onDelete)
	rel.OnUpdate = diagram.ReferentialAction(onUpdt)
	return &rel, nil
}

// endpointIDs parses the two endpoint entity ids of rel.
func endpointIDs(rel *models.Relationship) (uuid.UUID, uuid.UUID, error) {
	if len(rel.Entities) < 2 {
		return uuid.Nil, uuid.Nil, fmt.Errorf("relationship %s needs two endpoints", rel.ID)
	}
	src, err := uuid.Parse(rel.Entities[0].EntityID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid source entity id: %w", err)
	}
	dst, err := uuid.Parse(rel.Entities[1].EntityID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid target entity id: %w", err)
	}
	return src, dst, nil
}

func (r *RelationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	rel.Prepare()
	src, dst, err := endpointIDs(rel)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO relationships (` + relationshipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.db.Exec(ctx, query,
		rel.ID,
		rel.DiagramID,
		rel.Name,
		rel.Type,
		src,
		rel.Entities[0].Role,
		rel.Entities[0].Cardinality,
		rel.Entities[0].Participation,
		dst,
		rel.Entities[1].Role,
		rel.Entities[1].Cardinality,
		rel.Entities[1].Participation,
		string(rel.OnDelete),
		string(rel.OnUpdate),
		rel.Style,
		rel.Position.X,
		rel.Position.Y,
	)
	return err
}

func (r *RelationshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = $1`

	rel, err := scanRelationship(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rel, nil
}

func (r *RelationshipRepository) ListByDiagram(ctx context.Context, diagramID uuid.UUID) ([]models.Relationship, error) {
	query := `
		SELECT ` + relationshipColumns + `
		FROM relationships WHERE diagram_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	relationships := []models.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, *rel)
	}

	return relationships, rows.Err()
}

func (r *RelationshipRepository) Update(ctx context.Context, rel *models.Relationship) error {
	rel.Prepare()
	src, dst, err := endpointIDs(rel)
	if err != nil {
		return err
	}

	query := `
		UPDATE relationships SET
			name = $2, type = $3,
			source_entity_id = $4, source_role = $5, source_cardinality = $6, source_participation = $7,
			target_entity_id = $8, target_role = $9, target_cardinality = $10, target_participation = $11,
			on_delete = $12, on_update = $13, style = $14, position_x = $15, position_y = $16
		WHERE id = $1
	`

	return affected(r.db.Exec(ctx, query,
		rel.ID,
		rel.Name,
		rel.Type,
		src,
		rel.Entities[0].Role,
		rel.Entities[0].Cardinality,
		rel.Entities[0].Participation,
		dst,
		rel.Entities[1].Role,
		rel.Entities[1].Cardinality,
		rel.Entities[1].Participation,
		string(rel.OnDelete),
		string(rel.OnUpdate),
		rel.Style,
		rel.Position.X,
		rel.Position.Y,
	))
}

func (r *RelationshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM relationships WHERE id = $1`, id))
}

// prefixed qualifies every column in a comma separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
