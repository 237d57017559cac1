package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"erdiagram/internal/repositories"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerator reports that the schema generator could not be reached or
	// failed on its side.
	ErrGenerator = errors.New("schema generator failed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalid("invalid %s ID %q", kind, s)
	}
	return id, nil
}

// storeErr turns a repository miss into ErrNotFound for what.
func storeErr(what string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(what)
	}
	return err
}

// staleSchema clears the cached schema text of a diagram after a structural
// change. Failure only means the next read regenerates, so it is logged.
func staleSchema(ctx context.Context, diagrams DiagramStore, diagramID uuid.UUID) {
	if err := diagrams.SetSchemaCode(ctx, diagramID, ""); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		slog.Warn("failed to clear cached schema", "diagram_id", diagramID, "error", err)
	}
}
