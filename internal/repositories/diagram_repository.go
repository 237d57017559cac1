package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type DiagramRepository struct {
	db DBTX
}

func NewDiagramRepository(db DBTX) *DiagramRepository {
	return &DiagramRepository{db: db}
}

const diagramColumns = `id, project_id, name, description, is_public, version, layout, mongo_db_schema_code, created_at, updated_at`

func scanDiagram(row pgx.Row) (*models.Diagram, error) {
	var d models.Diagram
	err := row.Scan(
		&d.ID,
		&d.ProjectID,
		&d.Name,
		&d.Description,
		&d.IsPublic,
		&d.Version,
		&d.Layout,
		&d.MongoDBSchemaCode,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DiagramRepository) Create(ctx context.Context, d *models.Diagram) error {
	d.Prepare()

	query := `
		INSERT INTO diagrams (` + diagramColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.ProjectID,
		d.Name,
		d.Description,
		d.IsPublic,
		d.Version,
		d.Layout,
		d.MongoDBSchemaCode,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

// GetByID returns the diagram row without its graph, or nil if it does not exist.
func (r *DiagramRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Diagram, error) {
	query := `SELECT ` + diagramColumns + ` FROM diagrams WHERE id = $1`

	d, err := scanDiagram(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (r *DiagramRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Diagram, error) {
	query := `
		SELECT ` + diagramColumns + `
		FROM diagrams WHERE project_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	diagrams := []models.Diagram{}
	for rows.Next() {
		d, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		diagrams = append(diagrams, *d)
	}

	return diagrams, rows.Err()
}

// Update writes the diagram settings.
func (r *DiagramRepository) Update(ctx context.Context, d *models.Diagram) error {
	d.Prepare()

	query := `
		UPDATE diagrams SET
			name = $2, description = $3, is_public = $4, version = $5, updated_at = $6
		WHERE id = $1
	`

	return affected(r.db.Exec(ctx, query,
		d.ID,
		d.Name,
		d.Description,
		d.IsPublic,
		d.Version,
		d.UpdatedAt,
	))
}

func (r *DiagramRepository) UpdateLayout(ctx context.Context, id uuid.UUID, layout diagram.Layout) error {
	query := `UPDATE diagrams SET layout = $2, updated_at = $3 WHERE id = $1`
	return affected(r.db.Exec(ctx, query, id, layout, time.Now().UTC()))
}

// SetSchemaCode stores the cached schema text. An empty code marks the
// cache as stale.
func (r *DiagramRepository) SetSchemaCode(ctx context.Context, id uuid.UUID, code string) error {
	query := `UPDATE diagrams SET mongo_db_schema_code = $2 WHERE id = $1`
	return affected(r.db.Exec(ctx, query, id, code))
}

func (r *DiagramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM diagrams WHERE id = $1`, id))
}
