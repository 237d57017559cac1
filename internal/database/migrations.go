package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createProjectsTable,
		createDiagramsTable,
		createEntitiesTable,
		createAttributesTable,
		createRelationshipsTable,
	}

	for i, migration := range migrations {
		slog.Debug("running migration", "step", i+1, "total", len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("all migrations completed successfully")
	return nil
}

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL,
  description TEXT,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createDiagramsTable = `
CREATE TABLE IF NOT EXISTS diagrams (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_public BOOLEAN NOT NULL DEFAULT FALSE,
  version INTEGER NOT NULL DEFAULT 1 CHECK (version >= 1),
  layout JSONB,
  mongo_db_schema_code TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_diagrams_project_id ON diagrams(project_id);
`

const createEntitiesTable = `
CREATE TABLE IF NOT EXISTS entities (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'regular' CHECK (kind IN ('regular', 'weak', 'associative')),
  style JSONB NOT NULL DEFAULT '{}'::jsonb,
  position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
  position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS idx_entities_diagram_id ON entities(diagram_id);
`

const createAttributesTable = `
CREATE TABLE IF NOT EXISTS attributes (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  entity_id UUID NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  data_type TEXT NOT NULL DEFAULT 'String',
  is_primary_key BOOLEAN NOT NULL DEFAULT FALSE,
  is_foreign_key BOOLEAN NOT NULL DEFAULT FALSE,
  is_unique BOOLEAN NOT NULL DEFAULT FALSE,
  is_nullable BOOLEAN NOT NULL DEFAULT TRUE,
  is_auto_increment BOOLEAN NOT NULL DEFAULT FALSE,
  is_unsigned BOOLEAN NOT NULL DEFAULT FALSE,
  default_value TEXT,
  comment TEXT,
  ordinal INTEGER NOT NULL DEFAULT 0,
  CHECK (NOT is_primary_key OR (is_unique AND NOT is_nullable))
);

CREATE INDEX IF NOT EXISTS idx_attributes_entity_id ON attributes(entity_id, ordinal);
`

const createRelationshipsTable = `
CREATE TABLE IF NOT EXISTS relationships (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  diagram_id UUID NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  type TEXT NOT NULL CHECK (type IN ('one-to-one', 'one-to-many', 'many-to-many')),
  source_entity_id UUID NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  source_role TEXT NOT NULL DEFAULT '',
  source_cardinality TEXT NOT NULL,
  source_participation TEXT NOT NULL DEFAULT 'partial',
  target_entity_id UUID NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  target_role TEXT NOT NULL DEFAULT '',
  target_cardinality TEXT NOT NULL,
  target_participation TEXT NOT NULL DEFAULT 'partial',
  on_delete TEXT NOT NULL DEFAULT 'NO ACTION',
  on_update TEXT NOT NULL DEFAULT 'NO ACTION',
  style JSONB NOT NULL DEFAULT '{}'::jsonb,
  position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
  position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT clock_timestamp(),
  CHECK (source_entity_id <> target_entity_id)
);

CREATE INDEX IF NOT EXISTS idx_relationships_diagram_id ON relationships(diagram_id);
`
