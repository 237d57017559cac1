package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type AttributeRepository struct {
	db DBTX
}

func NewAttributeRepository(db DBTX) *AttributeRepository {
	return &AttributeRepository{db: db}
}

const attributeColumns = `id, entity_id, name, data_type, is_primary_key, is_foreign_key, is_unique,
	is_nullable, is_auto_increment, is_unsigned, default_value, comment, ordinal`

func scanAttribute(row pgx.Row) (*models.Attribute, error) {
	var a models.Attribute
	var dataType string
	err := row.Scan(
		&a.ID,
		&a.EntityID,
		&a.Name,
		&dataType,
		&a.IsPrimaryKey,
		&a.IsForeignKey,
		&a.IsUnique,
		&a.IsNullable,
		&a.IsAutoIncrement,
		&a.IsUnsigned,
		&a.DefaultValue,
		&a.Comment,
		&a.Ordinal,
	)
	if err != nil {
		return nil, err
	}
	a.DataType = diagram.ParseDataType(dataType)
	return &a, nil
}

// Create appends the attribute after the entity's existing attributes.
func (r *AttributeRepository) Create(ctx context.Context, a *models.Attribute) error {
	a.Prepare()

	query := `
		INSERT INTO attributes (` + attributeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			(SELECT COALESCE(MAX(ordinal) + 1, 0) FROM attributes WHERE entity_id = $2))
		RETURNING ordinal
	`

	return r.db.QueryRow(ctx, query,
		a.ID,
		a.EntityID,
		a.Name,
		a.DataType.String(),
		a.IsPrimaryKey,
		a.IsForeignKey,
		a.IsUnique,
		a.IsNullable,
		a.IsAutoIncrement,
		a.IsUnsigned,
		a.DefaultValue,
		a.Comment,
	).Scan(&a.Ordinal)
}

func (r *AttributeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	query := `SELECT ` + attributeColumns + ` FROM attributes WHERE id = $1`

	a, err := scanAttribute(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AttributeRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]models.Attribute, error) {
	query := `SELECT ` + attributeColumns + ` FROM attributes WHERE entity_id = $1 ORDER BY ordinal`

	rows, err := r.db.Query(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attrs := []models.Attribute{}
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, *a)
	}

	return attrs, rows.Err()
}

// ListByDiagram returns the attributes of every entity in the diagram,
// grouped by entity id and in list order.
func (r *AttributeRepository) ListByDiagram(ctx context.Context, diagramID uuid.UUID) (map[uuid.UUID][]models.Attribute, error) {
	query := `
		SELECT ` + prefixed("a", attributeColumns) + `
		FROM attributes a
		JOIN entities e ON e.id = a.entity_id
		WHERE e.diagram_id = $1
		ORDER BY a.entity_id, a.ordinal
	`

	rows, err := r.db.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byEntity := make(map[uuid.UUID][]models.Attribute)
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		byEntity[a.EntityID] = append(byEntity[a.EntityID], *a)
	}

	return byEntity, rows.Err()
}

// Update replaces every field except the owning entity and the list position.
func (r *AttributeRepository) Update(ctx context.Context, a *models.Attribute) error {
	a.Prepare()

	query := `
		UPDATE attributes SET
			name = $2, data_type = $3, is_primary_key = $4, is_foreign_key = $5, is_unique = $6,
			is_nullable = $7, is_auto_increment = $8, is_unsigned = $9, default_value = $10, comment = $11
		WHERE id = $1
	`

	return affected(r.db.Exec(ctx, query,
		a.ID,
		a.Name,
		a.DataType.String(),
		a.IsPrimaryKey,
		a.IsForeignKey,
		a.IsUnique,
		a.IsNullable,
		a.IsAutoIncrement,
		a.IsUnsigned,
		a.DefaultValue,
		a.Comment,
	))
}

func (r *AttributeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM attributes WHERE id = $1`, id))
}
