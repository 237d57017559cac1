package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"erdiagram/internal/models"
)

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Prepare()

	query := `
		INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects WHERE id = $1
	`

	var project models.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.Prepare()

	query := `
		UPDATE projects SET
			name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`

	return affected(r.db.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.UpdatedAt,
	))
}

// Delete removes the project; its diagrams go with it (ON DELETE CASCADE).
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id))
}
