package diagram

import (
	"context"
	"strings"
)

// GenerateSchema asks the backend for fresh schema text and displays it.
// Unlike the regeneration that follows an edit, a failure here is returned.
func (s *Store) GenerateSchema(ctx context.Context) (string, error) {
	var code string
	err := s.run(ctx, func(ctx context.Context) error {
		if err := s.generateSchema(ctx); err != nil {
			return err
		}
		code = s.Schema()
		return nil
	})
	return code, err
}

// ApplySchemaEdit submits edited schema text for reverse parsing and reloads
// the whole diagram from the result. Unsaved layout changes are discarded.
func (s *Store) ApplySchemaEdit(ctx context.Context, schemaCode string) error {
	return s.run(ctx, func(ctx context.Context) error {
		if strings.TrimSpace(schemaCode) == "" {
			err := &ValidationError{Field: "schemaCode", Reason: "is required"}
			return s.fail("Apply failed", err.Error(), err)
		}
		if _, err := s.backend.ApplySchema(ctx, s.diagramID, schemaCode); err != nil {
			return s.fail("Apply failed", "Failed to apply schema changes", &PersistenceError{Op: "apply schema", Err: err})
		}
		if err := s.load(ctx); err != nil {
			s.notifier.Error("Apply failed", "Failed to reload diagram")
			return err
		}
		s.notifier.Success("Schema applied", "Diagram has been updated from the schema")
		return nil
	})
}

// UpdateSettings persists the diagram name, description, visibility and
// version. A version below 1 is stored as 1.
func (s *Store) UpdateSettings(ctx context.Context, in Settings) error {
	return s.run(ctx, func(ctx context.Context) error {
		in.Name = strings.TrimSpace(in.Name)
		if in.Version < 1 {
			in.Version = 1
		}
		if err := s.check(in); err != nil {
			return s.fail("Update failed", err.Error(), err)
		}

		d, err := s.backend.UpdateDiagram(ctx, s.diagramID, in)
		if err != nil {
			return s.fail("Update failed", "Failed to update diagram settings", &PersistenceError{Op: "update diagram", Err: err})
		}

		s.mu.Lock()
		s.meta.Name = in.Name
		s.meta.Description = in.Description
		s.meta.IsPublic = in.IsPublic
		s.meta.Version = in.Version
		if d != nil {
			s.meta.UpdatedAt = d.UpdatedAt
		}
		_ = s.transition(EventCloseSettings)
		s.mu.Unlock()

		s.notifier.Success("Settings updated", "Diagram settings have been updated successfully")
		return nil
	})
}

// Preview fetches the diagram rendered as Mermaid erDiagram text.
func (s *Store) Preview(ctx context.Context) (string, error) {
	return s.backend.Preview(ctx, s.diagramID)
}
