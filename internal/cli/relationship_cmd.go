package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"erdiagram/internal/diagram"
)

func (a *app) relationshipCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rel",
		Aliases: []string{"relationship"},
		Short:   "Add, update and remove relationships",
	}
	cmd.AddCommand(a.relationshipAddCommand(), a.relationshipUpdateCommand(), a.relationshipRemoveCommand())
	return cmd
}

type relationshipFlags struct {
	name                string
	source              string
	target              string
	sourceRole          string
	targetRole          string
	sourceCardinality   string
	targetCardinality   string
	sourceParticipation string
	targetParticipation string
	onDelete            string
	onUpdate            string
	style               diagram.RelationshipStyle
}

func (f *relationshipFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Relationship name")
	flags.StringVar(&f.source, "source", "", "Source entity id")
	flags.StringVar(&f.target, "target", "", "Target entity id")
	flags.StringVar(&f.sourceRole, "source-role", "", "Role of the source entity")
	flags.StringVar(&f.targetRole, "target-role", "", "Role of the target entity")
	flags.StringVar(&f.sourceCardinality, "source-cardinality", "", "Source cardinality: 0..1, 1, 0..n, 1..n or n")
	flags.StringVar(&f.targetCardinality, "target-cardinality", "", "Target cardinality: 0..1, 1, 0..n, 1..n or n")
	flags.StringVar(&f.sourceParticipation, "source-participation", "", "Source participation: partial or total")
	flags.StringVar(&f.targetParticipation, "target-participation", "", "Target participation: partial or total")
	flags.StringVar(&f.onDelete, "on-delete", "", "Referential action on delete")
	flags.StringVar(&f.onUpdate, "on-update", "", "Referential action on update")
	flags.StringVar(&f.style.LineColor, "line-color", "", "Line color")
	flags.StringVar(&f.style.LineStyle, "line-style", "", "Line style")
	flags.IntVar(&f.style.LineWidth, "line-width", 0, "Line width")
}

func (f *relationshipFlags) merge(cmd *cobra.Command, in diagram.RelationshipInput) diagram.RelationshipInput {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("name", &in.Name, f.name)
	set("source", &in.SourceID, f.source)
	set("target", &in.TargetID, f.target)
	set("source-role", &in.SourceRole, f.sourceRole)
	set("target-role", &in.TargetRole, f.targetRole)
	if flags.Changed("source-cardinality") {
		in.SourceCardinality = diagram.Cardinality(f.sourceCardinality)
	}
	if flags.Changed("target-cardinality") {
		in.TargetCardinality = diagram.Cardinality(f.targetCardinality)
	}
	if flags.Changed("source-participation") {
		in.SourceParticipation = diagram.Participation(f.sourceParticipation)
	}
	if flags.Changed("target-participation") {
		in.TargetParticipation = diagram.Participation(f.targetParticipation)
	}
	if flags.Changed("on-delete") {
		in.OnDelete = diagram.ReferentialAction(f.onDelete)
	}
	if flags.Changed("on-update") {
		in.OnUpdate = diagram.ReferentialAction(f.onUpdate)
	}
	if flags.Changed("line-color") || flags.Changed("line-style") || flags.Changed("line-width") {
		style := diagram.DefaultRelationshipStyle
		if in.Style != nil {
			style = *in.Style
		}
		set("line-color", &style.LineColor, f.style.LineColor)
		set("line-style", &style.LineStyle, f.style.LineStyle)
		if flags.Changed("line-width") {
			style.LineWidth = f.style.LineWidth
		}
		in.Style = &style
	}
	return in
}

func (a *app) renderEdge(e diagram.Edge) error {
	return a.render(e, func(w io.Writer) error { return writeEdge(w, e) })
}

func (a *app) relationshipAddCommand() *cobra.Command {
	var f relationshipFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Connect two entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := f.merge(cmd, diagram.DefaultRelationshipInput())
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				edge, err := s.CreateRelationship(ctx, in)
				if err != nil {
					return err
				}
				return a.renderEdge(*edge)
			})
		},
	}
	f.bind(cmd)
	for _, name := range []string{"name", "source", "target"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) relationshipUpdateCommand() *cobra.Command {
	var f relationshipFlags
	cmd := &cobra.Command{
		Use:   "update RELATIONSHIP_ID",
		Short: "Change a relationship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				edge, ok := s.Edge(id)
				if !ok {
					return fmt.Errorf("relationship %s: %w", id, diagram.ErrNotFound)
				}
				in := f.merge(cmd, diagram.RelationshipInputFromEdge(edge))
				if err := s.UpdateRelationship(ctx, id, in); err != nil {
					return err
				}
				updated, _ := s.Edge(id)
				return a.renderEdge(updated)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) relationshipRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm RELATIONSHIP_ID",
		Aliases: []string{"delete"},
		Short:   "Delete a relationship",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				return s.DeleteRelationship(ctx, args[0])
			})
		},
	}
}
