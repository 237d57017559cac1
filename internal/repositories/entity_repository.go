package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"erdiagram/internal/models"
)

type EntityRepository struct {
	db DBTX
}

func NewEntityRepository(db DBTX) *EntityRepository {
	return &EntityRepository{db: db}
}

const entityColumns = `id, diagram_id, name, kind, style, position_x, position_y`

func scanEntity(row pgx.Row) (*models.Entity, error) {
	var e models.Entity
	err := row.Scan(
		&e.ID,
		&e.DiagramID,
		&e.Name,
		&e.Kind,
		&e.Style,
		&e.Position.X,
		&e.Position.Y,
	)
	if err != nil {
		return nil, err
	}
	e.Attributes = []models.Attribute{}
	return &e, nil
}

func (r *EntityRepository) Create(ctx context.Context, e *models.Entity) error {
	e.Prepare()

	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.DiagramID,
		e.Name,
		e.Kind,
		e.Style,
		e.Position.X,
		e.Position.Y,
	)
	return err
}

// GetByID returns the entity without attributes, or nil if it does not exist.
func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = $1`

	e, err := scanEntity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (r *EntityRepository) ListByDiagram(ctx context.Context, diagramID uuid.UUID) ([]models.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities WHERE diagram_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, diagramID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []models.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *e)
	}

	return entities, rows.Err()
}

// Update writes name, kind, style and position.
func (r *EntityRepository) Update(ctx context.Context, e *models.Entity) error {
	query := `
		UPDATE entities SET
			name = $2, kind = $3, style = $4, position_x = $5, position_y = $6
		WHERE id = $1
	`

	return affected(r.db.Exec(ctx, query,
		e.ID,
		e.Name,
		e.Kind,
		e.Style,
		e.Position.X,
		e.Position.Y,
	))
}

// Delete removes the entity with its attributes and every relationship
// that references it (ON DELETE CASCADE).
func (r *EntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id))
}

func (r *EntityRepository) DeleteByDiagram(ctx context.Context, diagramID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM entities WHERE diagram_id = $1`, diagramID)
	return err
}
