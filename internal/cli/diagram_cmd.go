package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"erdiagram/internal/diagram"
)

func (a *app) diagramCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Show, save and configure the diagram",
	}
	cmd.AddCommand(a.diagramShowCommand(), a.diagramSaveCommand(), a.diagramSettingsCommand())
	return cmd
}

func (a *app) diagramShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the diagram with its entities and relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(_ context.Context, s *diagram.Store) error {
				return a.showDiagram(s)
			})
		},
	}
}

func (a *app) showDiagram(s *diagram.Store) error {
	meta, _ := s.Diagram()
	view := diagramView{
		ID:          meta.ID,
		Name:        meta.Name,
		Description: meta.Description,
		IsPublic:    meta.IsPublic,
		Version:     meta.Version,
		Nodes:       s.Nodes(),
		Edges:       s.Edges(),
	}
	return a.render(view, func(w io.Writer) error { return writeDiagram(w, view) })
}

func (a *app) diagramSaveCommand() *cobra.Command {
	var moves []string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist entity positions and the layout",
		Long:  `save persists the positions of all entities, moves each relationship to the midpoint of its entities and stores the layout. Use --move to reposition entities first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				for _, m := range moves {
					id, pos, err := parseMove(m)
					if err != nil {
						return err
					}
					if err := s.MoveNode(id, pos); err != nil {
						return err
					}
				}
				return s.Save(ctx)
			})
		},
	}
	cmd.Flags().StringArrayVar(&moves, "move", nil, "Move an entity before saving, as ID=X,Y (repeatable)")
	return cmd
}

// parseMove parses ID=X,Y.
func parseMove(s string) (string, diagram.Position, error) {
	id, coords, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return "", diagram.Position{}, fmt.Errorf("invalid move %q: want ID=X,Y", s)
	}
	pos, err := parsePosition(coords)
	if err != nil {
		return "", diagram.Position{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return strings.TrimSpace(id), pos, nil
}

func parsePosition(s string) (diagram.Position, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return diagram.Position{}, fmt.Errorf("position %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return diagram.Position{}, fmt.Errorf("position x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return diagram.Position{}, fmt.Errorf("position y: %w", err)
	}
	return diagram.Position{X: x, Y: y}, nil
}

func (a *app) diagramSettingsCommand() *cobra.Command {
	var in diagram.Settings
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update the diagram name, description, visibility or version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				meta, _ := s.Diagram()
				settings := diagram.Settings{
					Name:        meta.Name,
					Description: meta.Description,
					IsPublic:    meta.IsPublic,
					Version:     meta.Version,
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					settings.Name = in.Name
				}
				if flags.Changed("description") {
					settings.Description = in.Description
				}
				if flags.Changed("public") {
					settings.IsPublic = in.IsPublic
				}
				if flags.Changed("version") {
					settings.Version = in.Version
				}
				if err := s.UpdateSettings(ctx, settings); err != nil {
					return err
				}
				return a.showDiagram(s)
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Diagram name")
	cmd.Flags().StringVar(&in.Description, "description", "", "Diagram description")
	cmd.Flags().BoolVar(&in.IsPublic, "public", false, "Make the diagram public")
	cmd.Flags().IntVar(&in.Version, "version", 1, "Diagram version")
	return cmd
}
