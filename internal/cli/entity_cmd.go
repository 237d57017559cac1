package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"erdiagram/internal/diagram"
)

func (a *app) entityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entity",
		Aliases: []string{"entities"},
		Short:   "Add, update and remove entities",
	}
	cmd.AddCommand(a.entityAddCommand(), a.entityUpdateCommand(), a.entityRemoveCommand())
	return cmd
}

type entityFlags struct {
	name  string
	kind  string
	style diagram.EntityStyle
}

func (f *entityFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Entity name")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Entity kind: regular, weak or associative")
	cmd.Flags().StringVar(&f.style.BackgroundColor, "background", "", "Background color")
	cmd.Flags().StringVar(&f.style.BorderColor, "border", "", "Border color")
	cmd.Flags().StringVar(&f.style.TextColor, "text-color", "", "Text color")
	cmd.Flags().IntVar(&f.style.BorderWidth, "border-width", 0, "Border width")
}

func (f *entityFlags) styleChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"background", "border", "text-color", "border-width"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (a *app) entityAddCommand() *cobra.Command {
	var (
		f   entityFlags
		pos string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var at diagram.Position
			if pos != "" {
				p, err := parsePosition(pos)
				if err != nil {
					return err
				}
				at = p
			}
			in := diagram.EntityInput{Name: f.name, Kind: diagram.EntityKind(f.kind)}
			if f.styleChanged(cmd) {
				style := f.style
				in.Style = &style
			}
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				node, err := s.CreateEntity(ctx, in, at)
				if err != nil {
					return err
				}
				return a.render(node, func(w io.Writer) error { return writeNode(w, *node) })
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&pos, "at", "", "Canvas position as X,Y")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) entityUpdateCommand() *cobra.Command {
	var f entityFlags
	cmd := &cobra.Command{
		Use:   "update ENTITY_ID",
		Short: "Rename an entity or change its kind or style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				node, ok := s.Node(id)
				if !ok {
					return fmt.Errorf("entity %s: %w", id, diagram.ErrNotFound)
				}
				in := diagram.EntityInput{Name: node.Data.Name, Kind: node.Data.Kind}
				if cmd.Flags().Changed("name") {
					in.Name = f.name
				}
				if cmd.Flags().Changed("kind") {
					in.Kind = diagram.EntityKind(f.kind)
				}
				if f.styleChanged(cmd) {
					style := mergeEntityStyle(cmd, node.Data.Style, f.style)
					in.Style = &style
				}
				if err := s.UpdateEntity(ctx, id, in); err != nil {
					return err
				}
				updated, _ := s.Node(id)
				return a.render(updated, func(w io.Writer) error { return writeNode(w, updated) })
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func mergeEntityStyle(cmd *cobra.Command, current, set diagram.EntityStyle) diagram.EntityStyle {
	flags := cmd.Flags()
	if flags.Changed("background") {
		current.BackgroundColor = set.BackgroundColor
	}
	if flags.Changed("border") {
		current.BorderColor = set.BorderColor
	}
	if flags.Changed("text-color") {
		current.TextColor = set.TextColor
	}
	if flags.Changed("border-width") {
		current.BorderWidth = set.BorderWidth
	}
	return current
}

func (a *app) entityRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ENTITY_ID",
		Aliases: []string{"delete"},
		Short:   "Delete an entity with its attributes and relationships",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				return s.DeleteEntity(ctx, args[0])
			})
		},
	}
}
